package model

import (
	"fmt"
	"time"
)

// LocalTime formats time as "YYYY-MM-DD HH:MM:SS" in JSON responses.
type LocalTime time.Time

const timeFormat = "2006-01-02 15:04:05"

// MarshalJSON implements the json.Marshaler interface.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	formatted := fmt.Sprintf("\"%s\"", time.Time(t).Format(timeFormat))
	return []byte(formatted), nil
}

// String 返回与 JSON 相同的格式。
func (t LocalTime) String() string {
	return time.Time(t).Format(timeFormat)
}
