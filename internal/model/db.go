package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Username     string     `gorm:"column:username;type:varchar(255);not null;uniqueIndex:idx_users_username;comment:用户名"`
	Email        string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex:idx_users_email;comment:邮箱"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(255);not null;comment:bcrypt哈希"`
	Role         string     `gorm:"column:role;type:varchar(10);not null;default:user;check:chk_users_role,role IN ('user','admin');comment:角色：user/admin"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime;comment:注册时间"`
	LastLogin    *time.Time `gorm:"column:last_login;comment:最近登录时间"`
}

// UserGame 用户游戏库条目，(user_id, app_id) 唯一；用户或游戏删除时级联删除
type UserGame struct {
	ID              uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          uint64     `gorm:"column:user_id;not null;uniqueIndex:idx_user_games_user_app;comment:用户ID"`
	AppID           int64      `gorm:"column:app_id;not null;uniqueIndex:idx_user_games_user_app;index:idx_user_games_app;comment:游戏ID"`
	AddedAt         time.Time  `gorm:"column:added_at;autoCreateTime;comment:加入时间"`
	PlaytimeMinutes int        `gorm:"column:playtime_minutes;not null;default:0;comment:累计游玩分钟"`
	LastPlayed      *time.Time `gorm:"column:last_played;comment:最近游玩时间"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Game *Game `gorm:"foreignKey:AppID;references:AppID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string     { return "users" }
func (UserGame) TableName() string { return "user_games" }

// AllModels 按依赖顺序返回需要迁移的表
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Game{},
		&Genre{},
		&Developer{},
		&Publisher{},
		&Category{},
		&Tag{},
		&GameGenre{},
		&GameDeveloper{},
		&GamePublisher{},
		&GameCategory{},
		&GameTag{},
		&Screenshot{},
		&Movie{},
		&GamePriceHistory{},
		&UserGame{},
	}
}
