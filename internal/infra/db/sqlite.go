package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect はSQLiteファイルに接続して *gorm.DB を返す。
// TranslateErrorでunique制約違反を gorm.ErrDuplicatedKey に変換する。
func Connect(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
	})
}
