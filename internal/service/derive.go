package service

import (
	"encoding/json"
	"math"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ReviewPercentage 好评率（0-100 取整）；没有评价时为 nil
func ReviewPercentage(positive, negative int) *int {
	total := positive + negative
	if total <= 0 {
		return nil
	}
	pct := int(math.Round(float64(positive) / float64(total) * 100))
	return &pct
}

// PlaytimeHours 分钟换算为小时并四舍五入
func PlaytimeHours(minutes int) int {
	return int(math.Round(float64(minutes) / 60))
}

// ParseLanguages JSON 语言列表；null、空串或解析失败时返回空列表
func ParseLanguages(raw datatypes.JSON, logger *logrus.Logger) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}
	}
	var langs []string
	if err := json.Unmarshal(raw, &langs); err != nil {
		if logger != nil {
			logger.WithError(err).Warn("Failed to parse language list")
		}
		return []string{}
	}
	if langs == nil {
		return []string{}
	}
	return langs
}

func boolValue(b *bool) bool {
	return b != nil && *b
}

// jsonList 语言列表序列化为 JSON 列
func jsonList(list []string) (datatypes.JSON, error) {
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
