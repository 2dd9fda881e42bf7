package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func init() {
	// 价格以数字输出，而不是带引号的字符串
	decimal.MarshalJSONWithoutQuotes = true
}

// Game 游戏主表，app_id 由外部数据源分配（Steam AppID），不自增
type Game struct {
	AppID                   int64               `gorm:"column:app_id;primaryKey;autoIncrement:false;comment:外部分配的游戏ID"`
	Name                    string              `gorm:"column:name;type:varchar(255);not null;index:idx_games_name;comment:游戏名称"`
	ReleaseDate             *time.Time          `gorm:"column:release_date;type:date;index:idx_games_release_date;comment:发行日期"`
	EstimatedOwners         *string             `gorm:"column:estimated_owners;type:varchar(100);comment:预估拥有者区间"`
	PeakCCU                 *int                `gorm:"column:peak_ccu;comment:峰值在线"`
	RequiredAge             *int                `gorm:"column:required_age;comment:年龄限制"`
	Price                   decimal.NullDecimal `gorm:"column:price;type:decimal(10,2);index:idx_games_price;comment:价格"`
	DLCCount                *int                `gorm:"column:dlc_count;comment:DLC数量"`
	AboutTheGame            *string             `gorm:"column:about_the_game;type:text;comment:简介"`
	SupportedLanguages      datatypes.JSON      `gorm:"column:supported_languages;comment:支持语言(JSON数组)"`
	FullAudioLanguages      datatypes.JSON      `gorm:"column:full_audio_languages;comment:全语音语言(JSON数组)"`
	Reviews                 *string             `gorm:"column:reviews;type:text;comment:媒体评价"`
	HeaderImage             *string             `gorm:"column:header_image;type:varchar(255);comment:头图"`
	Website                 *string             `gorm:"column:website;type:varchar(255)"`
	SupportURL              *string             `gorm:"column:support_url;type:varchar(255)"`
	SupportEmail            *string             `gorm:"column:support_email;type:varchar(255)"`
	Windows                 *bool               `gorm:"column:windows;comment:支持Windows"`
	Mac                     *bool               `gorm:"column:mac;comment:支持Mac"`
	Linux                   *bool               `gorm:"column:linux;comment:支持Linux"`
	MetacriticScore         *int                `gorm:"column:metacritic_score;index:idx_games_metacritic;comment:Metacritic评分0-100"`
	MetacriticURL           *string             `gorm:"column:metacritic_url;type:varchar(255)"`
	UserScore               *int                `gorm:"column:user_score"`
	PositiveReviews         int                 `gorm:"column:positive_reviews;not null;default:0;comment:好评数"`
	NegativeReviews         int                 `gorm:"column:negative_reviews;not null;default:0;comment:差评数"`
	ScoreRank               *string             `gorm:"column:score_rank;type:varchar(50)"`
	Achievements            *int                `gorm:"column:achievements"`
	Recommendations         *int                `gorm:"column:recommendations"`
	Notes                   *string             `gorm:"column:notes;type:text"`
	AveragePlaytimeForever  int                 `gorm:"column:average_playtime_forever;not null;default:0;comment:平均游玩时长(分钟)"`
	AveragePlaytimeTwoWeeks int                 `gorm:"column:average_playtime_two_weeks;not null;default:0"`
	MedianPlaytimeForever   int                 `gorm:"column:median_playtime_forever;not null;default:0"`
	MedianPlaytimeTwoWeeks  int                 `gorm:"column:median_playtime_two_weeks;not null;default:0"`
}

// 属性实体：名称唯一，重复插入时复用已有 id
type Genre struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:varchar(255);not null;uniqueIndex:idx_genres_name"`
}

type Developer struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:varchar(255);not null;uniqueIndex:idx_developers_name"`
}

type Publisher struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:varchar(255);not null;uniqueIndex:idx_publishers_name"`
}

type Category struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:varchar(255);not null;uniqueIndex:idx_categories_name"`
}

type Tag struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:varchar(255);not null;uniqueIndex:idx_tags_name"`
}

// 关联表：(app_id, 实体id) 联合主键
type GameGenre struct {
	AppID   int64  `gorm:"column:app_id;primaryKey;autoIncrement:false"`
	GenreID uint64 `gorm:"column:genre_id;primaryKey;autoIncrement:false;index:idx_game_genres_genre"`
}

type GameDeveloper struct {
	AppID       int64  `gorm:"column:app_id;primaryKey;autoIncrement:false"`
	DeveloperID uint64 `gorm:"column:developer_id;primaryKey;autoIncrement:false;index:idx_game_developers_developer"`
}

type GamePublisher struct {
	AppID       int64  `gorm:"column:app_id;primaryKey;autoIncrement:false"`
	PublisherID uint64 `gorm:"column:publisher_id;primaryKey;autoIncrement:false;index:idx_game_publishers_publisher"`
}

type GameCategory struct {
	AppID      int64  `gorm:"column:app_id;primaryKey;autoIncrement:false"`
	CategoryID uint64 `gorm:"column:category_id;primaryKey;autoIncrement:false;index:idx_game_categories_category"`
}

type GameTag struct {
	AppID int64  `gorm:"column:app_id;primaryKey;autoIncrement:false"`
	TagID uint64 `gorm:"column:tag_id;primaryKey;autoIncrement:false;index:idx_game_tags_tag"`
}

// Screenshot 截图，更新时整体替换
type Screenshot struct {
	ID    uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	AppID int64  `gorm:"column:app_id;not null;index:idx_screenshots_app"`
	URL   string `gorm:"column:url;type:varchar(512);not null"`
}

// Movie 预告片，更新时整体替换
type Movie struct {
	ID    uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	AppID int64  `gorm:"column:app_id;not null;index:idx_movies_app"`
	URL   string `gorm:"column:url;type:varchar(512);not null"`
}

// GamePriceHistory 管理员改价留痕
type GamePriceHistory struct {
	ID        uint64              `gorm:"column:id;primaryKey;autoIncrement"`
	AppID     int64               `gorm:"column:app_id;not null;index:idx_price_history_app"`
	OldPrice  decimal.NullDecimal `gorm:"column:old_price;type:decimal(10,2);comment:修改前价格"`
	NewPrice  decimal.NullDecimal `gorm:"column:new_price;type:decimal(10,2);comment:修改后价格"`
	ChangedAt time.Time           `gorm:"column:changed_at;autoCreateTime;comment:修改时间"`
}

func (Game) TableName() string             { return "games" }
func (Genre) TableName() string            { return "genres" }
func (Developer) TableName() string        { return "developers" }
func (Publisher) TableName() string        { return "publishers" }
func (Category) TableName() string         { return "categories" }
func (Tag) TableName() string              { return "tags" }
func (GameGenre) TableName() string        { return "game_genres" }
func (GameDeveloper) TableName() string    { return "game_developers" }
func (GamePublisher) TableName() string    { return "game_publishers" }
func (GameCategory) TableName() string     { return "game_categories" }
func (GameTag) TableName() string          { return "game_tags" }
func (Screenshot) TableName() string       { return "screenshots" }
func (Movie) TableName() string            { return "movies" }
func (GamePriceHistory) TableName() string { return "game_price_history" }
