package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionIsLive(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{"active and unexpired", Session{Active: true, ExpireAt: now.Unix() + 60}, true},
		{"inactive", Session{Active: false, ExpireAt: now.Unix() + 60}, false},
		{"expired", Session{Active: true, ExpireAt: now.Unix() - 1}, false},
		{"expires exactly now", Session{Active: true, ExpireAt: now.Unix()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.IsLive(now))
		})
	}
}

func TestPostCreationDateTime(t *testing.T) {
	p := Post{CreatedAt: time.Date(2025, time.July, 2, 5, 47, 27, 0, time.Local)}

	assert.Equal(t, "02-07-2025", p.CreationDate())
	assert.Equal(t, "05:47", p.CreationTime())
}
