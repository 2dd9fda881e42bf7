package model

import (
	"bytes"
	"encoding/json"
)

// Field 可选字段：请求中未出现时 Set=false（保持不变），显式 null 时 Null=true（清空）
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// NewField 构造一个已赋值的字段
func NewField[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// NullField 构造一个显式置空的字段
func NullField[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Present 是否给出了非空值
func (f Field[T]) Present() bool {
	return f.Set && !f.Null
}
