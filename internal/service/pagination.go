package service

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPageSize      = 10
	DefaultGenrePageSize = 20
	MaxPageSize          = 100
)

// Pagination 列表分页信息
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalCount  int64 `json:"totalCount"`
	TotalPages  int   `json:"totalPages"`
}

// ParsePage 非数字、0 或负数都回退到默认值
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// ParsePageSize 非法值回退默认值，超过上限截断
func ParsePageSize(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// ParsePrice 非数字回退默认值
func ParsePrice(raw string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// TotalPages ceil(total/pageSize)，total 为 0 时为 0
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
