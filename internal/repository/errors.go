package repository

import (
	"errors"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameExists        = errors.New("game already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicate         = errors.New("duplicate entry")
	ErrEntryNotFound     = errors.New("library entry not found")
	ErrEntryExists       = errors.New("game already in library")
)

// isDuplicateKey 识别唯一约束冲突（MySQL 1062 / SQLite / PostgreSQL）
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// duplicateKeyName 取出冲突的索引名或列名，不含冲突值；识别不了返回空串
func duplicateKeyName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	msg := err.Error()
	// 冲突值本身可能包含这些标记，一律取最后一次出现之后的部分
	for _, marker := range []string{"for key ", "UNIQUE constraint failed: ", "unique constraint "} {
		i := strings.LastIndex(msg, marker)
		if i < 0 {
			continue
		}
		rest := strings.TrimSpace(msg[i+len(marker):])
		if rest != "" && (rest[0] == '\'' || rest[0] == '"') {
			if end := strings.IndexByte(rest[1:], rest[0]); end >= 0 {
				return rest[1 : end+1]
			}
		}
		if end := strings.IndexAny(rest, " ,"); end >= 0 {
			rest = rest[:end]
		}
		return rest
	}
	return ""
}

// classifyUserDuplicate 按冲突的索引/列名区分用户名与邮箱
func classifyUserDuplicate(err error) error {
	key := duplicateKeyName(err)
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	switch key {
	case "idx_users_username", "username":
		return ErrDuplicateUsername
	case "idx_users_email", "email":
		return ErrDuplicateEmail
	default:
		return ErrDuplicate
	}
}
