package api

import (
	"context"
	"fmt"
	"net/url"
)

// User is the identity and cumulative-stats snapshot the channel API returns
// for a handle or id.
type User struct {
	ID          string          `json:"_id"`
	Username    string          `json:"username"`
	Role        string          `json:"role"`
	TS          *string         `json:"ts"`
	XP          float64         `json:"xp"`
	GamesPlayed int             `json:"gamesplayed"`
	GamesWon    int             `json:"gameswon"`
	GameTime    float64         `json:"gametime"`
	Country     *string         `json:"country"`
	League      LeagueStanding  `json:"league"`
	Connections UserConnections `json:"connections"`
	FriendCount *int            `json:"friend_count"`
}

type LeagueStanding struct {
	GamesPlayed int     `json:"gamesplayed"`
	Rating      float64 `json:"rating"`
	Rank        string  `json:"rank"`
}

type UserConnections struct {
	Discord *DiscordConnection `json:"discord"`
}

type DiscordConnection struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type userData struct {
	User *User `json:"user"`
}

// GetUser resolves a username or user id to its canonical snapshot.
func (c *Client) GetUser(ctx context.Context, user string) (*User, error) {
	data, err := get[userData](ctx, c, fmt.Sprintf("/users/%s", url.PathEscape(user)), user)
	if err != nil {
		return nil, err
	}
	if data.User == nil {
		return nil, &Error{Kind: KindNotFound, Handle: user, Message: "user field missing"}
	}
	return data.User, nil
}
