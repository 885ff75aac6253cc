package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// UserRecords holds a user's per-mode personal bests.
type UserRecords struct {
	Records RankedRecords `json:"records"`
	Zen     ZenRecord     `json:"zen"`
}

type RankedRecords struct {
	FortyLines ModeRecord `json:"40l"`
	Blitz      ModeRecord `json:"blitz"`
}

type ModeRecord struct {
	Record *Record `json:"record"`
	Rank   *int    `json:"rank"`
}

type Record struct {
	TS         string          `json:"ts"`
	EndContext json.RawMessage `json:"endcontext"`
}

// endContext is the slice of the endcontext blob the bot reads. The full
// blob differs per mode and is kept raw.
type endContext struct {
	FinalTime float64 `json:"finalTime"`
	Score     int     `json:"score"`
}

// FinalTimeMillis extracts the run's final time in whole milliseconds from
// the endcontext blob. False when the blob is absent or does not parse.
func (r *Record) FinalTimeMillis() (int, bool) {
	var end endContext
	if err := json.Unmarshal(r.EndContext, &end); err != nil {
		return 0, false
	}
	return int(end.FinalTime), true
}

// Score extracts the run's score from the endcontext blob.
func (r *Record) Score() (int, bool) {
	var end endContext
	if err := json.Unmarshal(r.EndContext, &end); err != nil {
		return 0, false
	}
	return end.Score, true
}

type ZenRecord struct {
	Level int `json:"level"`
	Score int `json:"score"`
}

// GetUserRecords fetches per-mode best records for an already-resolved id.
func (c *Client) GetUserRecords(ctx context.Context, user string) (*UserRecords, error) {
	return get[UserRecords](ctx, c, fmt.Sprintf("/users/%s/records", url.PathEscape(user)), user)
}
