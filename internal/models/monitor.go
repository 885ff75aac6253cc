package models

// Monitor binds one tetr.io identity to one Discord channel. The composite
// primary key gives the (channel, username) uniqueness the add flow relies
// on for duplicate detection.
type Monitor struct {
	ChannelID             string  `gorm:"primaryKey;column:channel_id"`
	Username              string  `gorm:"primaryKey;column:username"`
	UserID                string  `gorm:"column:user_id"`
	GameTime              float64 `gorm:"column:game_time"`
	GamesPlayed           int     `gorm:"column:games_played"`
	LastMatchID           *string `gorm:"column:last_match_id"`
	LastPersonalBest40L   *int    `gorm:"column:last_personal_best_40l"`
	LastPersonalBestBlitz *int    `gorm:"column:last_personal_best_blitz"`
}

func (Monitor) TableName() string {
	return "monitor"
}
