package domain

import (
	"strings"
	"time"
)

// Goal is a reading goal, optionally rewarded with a sticker when done.
type Goal struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	// Due is an optional ISO date string.
	Due  string `json:"due,omitempty"`
	Done bool   `json:"done"`
	// RewardStickerID weakly references the sticker granted on completion.
	RewardStickerID StickerRef `json:"reward_sticker_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedAtMs     int64      `json:"created_at_ms"`
}

// Normalize fills defaults on a partial or imported goal.
func (g *Goal) Normalize(nowMs int64) {
	g.Text = strings.TrimSpace(g.Text)
	if g.CreatedAtMs == 0 {
		g.CreatedAtMs = nowMs
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.UnixMilli(g.CreatedAtMs)
	}
}
