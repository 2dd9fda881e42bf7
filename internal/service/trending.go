package service

import (
	"math"
	"sort"
	"time"

	"PlayHorizon/internal/model"
)

const (
	TrendingMinReviews = 5
	TrendingLimit      = 10
)

// TrendingSince 只统计 2000 年以后发行的游戏
var TrendingSince = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// RankedGame 热门榜条目（Score 为原始分）
type RankedGame struct {
	Game  *model.Game
	Score float64
}

// daysSince 按自然日计算，与 DATEDIFF(today, release_date) 一致
func daysSince(release time.Time, now time.Time) int {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ry, rm, rd := release.Date()
	rel := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	return int(today.Sub(rel).Hours() / 24)
}

// TrendingScore 0.25*评分 + 0.35*好评率 + 0.25*时长 - 0.15*发行天数
func TrendingScore(g *model.Game, now time.Time) float64 {
	var critic float64
	if g.MetacriticScore != nil {
		critic = float64(*g.MetacriticScore) / 100
	}

	var ratio float64
	if total := g.PositiveReviews + g.NegativeReviews; total > 0 {
		ratio = float64(g.PositiveReviews) / float64(total)
	}

	playtime := math.Min(float64(g.AveragePlaytimeForever)/3000, 1)

	var age float64
	if g.ReleaseDate != nil {
		age = math.Min(float64(daysSince(*g.ReleaseDate, now))/365, 1)
	}

	return critic*0.25 + ratio*0.35 + playtime*0.25 + age*-0.15
}

func eligibleForTrending(g *model.Game) bool {
	if g.ReleaseDate == nil || g.ReleaseDate.Before(TrendingSince) {
		return false
	}
	return g.PositiveReviews+g.NegativeReviews > TrendingMinReviews
}

// Rank 过滤、打分（>0）、降序（同分按 app_id 升序），取前 limit 个
func Rank(candidates []*model.Game, now time.Time, limit int) []RankedGame {
	if limit <= 0 {
		limit = TrendingLimit
	}
	ranked := make([]RankedGame, 0, len(candidates))
	for _, g := range candidates {
		if g == nil || !eligibleForTrending(g) {
			continue
		}
		score := TrendingScore(g, now)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, RankedGame{Game: g, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Game.AppID < ranked[j].Game.AppID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// DisplayScore 展示用分值 round(score*100)
func DisplayScore(score float64) int {
	return int(math.Round(score * 100))
}
