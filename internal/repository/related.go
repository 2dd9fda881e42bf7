package repository

import (
	"context"
	"fmt"
	"strings"

	"PlayHorizon/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 属性族：实体表 + 关联表
const (
	FamilyGenres     = "genres"
	FamilyDevelopers = "developers"
	FamilyPublishers = "publishers"
	FamilyCategories = "categories"
	FamilyTags       = "tags"
)

// 媒体族
const (
	MediaScreenshots = "screenshots"
	MediaMovies      = "movies"
)

type family struct {
	entity string
	bridge string
	fk     string
	model  func() interface{}
}

var families = map[string]family{
	FamilyGenres:     {entity: "genres", bridge: "game_genres", fk: "genre_id", model: func() interface{} { return &model.GameGenre{} }},
	FamilyDevelopers: {entity: "developers", bridge: "game_developers", fk: "developer_id", model: func() interface{} { return &model.GameDeveloper{} }},
	FamilyPublishers: {entity: "publishers", bridge: "game_publishers", fk: "publisher_id", model: func() interface{} { return &model.GamePublisher{} }},
	FamilyCategories: {entity: "categories", bridge: "game_categories", fk: "category_id", model: func() interface{} { return &model.GameCategory{} }},
	FamilyTags:       {entity: "tags", bridge: "game_tags", fk: "tag_id", model: func() interface{} { return &model.GameTag{} }},
}

// AllFamilies 详情页需要的全部属性族
var AllFamilies = []string{FamilyDevelopers, FamilyPublishers, FamilyCategories, FamilyGenres, FamilyTags}

// namedEntity 各属性实体表的公共形态
type namedEntity struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name"`
}

type appName struct {
	AppID int64  `gorm:"column:app_id"`
	Name  string `gorm:"column:name"`
}

// RelatedNames 属性族 -> app_id -> 名称列表
type RelatedNames map[string]map[int64][]string

// Get 取不到时返回空列表而不是 nil
func (r RelatedNames) Get(fam string, appID int64) []string {
	if names, ok := r[fam][appID]; ok && names != nil {
		return names
	}
	return []string{}
}

// loadRelatedNames 每个属性族一次 JOIN 查询，按 app_id 在内存中分组（名称去重并按字母序）
func loadRelatedNames(ctx context.Context, db *gorm.DB, appIDs []int64, fams ...string) (RelatedNames, error) {
	out := make(RelatedNames, len(fams))
	for _, fam := range fams {
		f, ok := families[fam]
		if !ok {
			return nil, fmt.Errorf("unknown family %q", fam)
		}
		grouped := make(map[int64][]string, len(appIDs))
		for _, id := range appIDs {
			grouped[id] = []string{}
		}
		out[fam] = grouped
		if len(appIDs) == 0 {
			continue
		}

		var rows []appName
		if err := db.WithContext(ctx).
			Table(f.bridge+" AS b").
			Select("b.app_id AS app_id, e.name AS name").
			Joins("JOIN "+f.entity+" e ON e.id = b."+f.fk).
			Where("b.app_id IN ?", appIDs).
			Order("b.app_id, e.name").
			Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("查询%s失败: %w", fam, err)
		}
		for _, row := range rows {
			list := grouped[row.AppID]
			if n := len(list); n > 0 && list[n-1] == row.Name {
				continue
			}
			grouped[row.AppID] = append(list, row.Name)
		}
	}
	return out, nil
}

// loadMediaURLs 按插入顺序取截图/视频地址
func loadMediaURLs(ctx context.Context, db *gorm.DB, media string, appID int64) ([]string, error) {
	urls := []string{}
	var m interface{}
	switch media {
	case MediaScreenshots:
		m = &model.Screenshot{}
	case MediaMovies:
		m = &model.Movie{}
	default:
		return nil, fmt.Errorf("unknown media %q", media)
	}
	if err := db.WithContext(ctx).Model(m).
		Where("app_id = ?", appID).
		Order("id").
		Pluck("url", &urls).Error; err != nil {
		return nil, fmt.Errorf("查询%s失败: %w", media, err)
	}
	return urls, nil
}

// cleanNames 去空白、去空串、去重（保持首次出现顺序）
func cleanNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// replaceRelated 在事务内替换一个游戏的某个属性族：删旧关联 -> 实体幂等插入 -> 取 id -> 批量写新关联
func replaceRelated(tx *gorm.DB, fam string, appID int64, names []string) error {
	f, ok := families[fam]
	if !ok {
		return fmt.Errorf("unknown family %q", fam)
	}
	if err := tx.Where("app_id = ?", appID).Delete(f.model()).Error; err != nil {
		return fmt.Errorf("删除%s关联失败: %w", fam, err)
	}

	names = cleanNames(names)
	if len(names) == 0 {
		return nil
	}

	for _, name := range names {
		row := namedEntity{Name: name}
		if err := tx.Table(f.entity).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("写入%s失败: %w, name: %s", fam, err, name)
		}
	}

	var entities []namedEntity
	if err := tx.Table(f.entity).Where("name IN ?", names).Find(&entities).Error; err != nil {
		return fmt.Errorf("查询%s id失败: %w", fam, err)
	}

	seen := make(map[uint64]struct{}, len(entities))
	links := make([]map[string]interface{}, 0, len(entities))
	for _, e := range entities {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		links = append(links, map[string]interface{}{"app_id": appID, f.fk: e.ID})
	}
	if len(links) == 0 {
		return nil
	}
	if err := tx.Model(f.model()).Create(links).Error; err != nil {
		return fmt.Errorf("写入%s关联失败: %w", fam, err)
	}
	return nil
}

// replaceMedia 删除后整体重写
func replaceMedia(tx *gorm.DB, media string, appID int64, urls []string) error {
	urls = cleanNames(urls)
	switch media {
	case MediaScreenshots:
		if err := tx.Where("app_id = ?", appID).Delete(&model.Screenshot{}).Error; err != nil {
			return fmt.Errorf("删除截图失败: %w", err)
		}
		if len(urls) == 0 {
			return nil
		}
		rows := make([]model.Screenshot, 0, len(urls))
		for _, u := range urls {
			rows = append(rows, model.Screenshot{AppID: appID, URL: u})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("写入截图失败: %w", err)
		}
	case MediaMovies:
		if err := tx.Where("app_id = ?", appID).Delete(&model.Movie{}).Error; err != nil {
			return fmt.Errorf("删除视频失败: %w", err)
		}
		if len(urls) == 0 {
			return nil
		}
		rows := make([]model.Movie, 0, len(urls))
		for _, u := range urls {
			rows = append(rows, model.Movie{AppID: appID, URL: u})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("写入视频失败: %w", err)
		}
	default:
		return fmt.Errorf("unknown media %q", media)
	}
	return nil
}
