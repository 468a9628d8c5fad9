package gocard

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Field keys understood by the layouts. Keys are not validated: unknown keys
// are ignored and missing ones fall back to placeholders.
const (
	FieldName       = "name"
	FieldClass      = "class"
	FieldGeneration = "generation"
	FieldClub       = "club"
	FieldSNS        = "sns"
	FieldFollowers  = "followers"
	FieldContent    = "content"
)

// FieldSet is the user-supplied text for one card update.
type FieldSet map[string]string

// Value returns the field value, or placeholder when it is missing or blank.
func (fs FieldSet) Value(key, placeholder string) string {
	if v := strings.TrimSpace(fs[key]); v != "" {
		return v
	}
	return placeholder
}

// Normalized returns a copy with trimmed, NFC-composed values. Form input on
// some platforms arrives as decomposed Hangul jamo, which most fonts render
// as separate letters.
func (fs FieldSet) Normalized() FieldSet {
	out := make(FieldSet, len(fs))
	for k, v := range fs {
		out[strings.TrimSpace(k)] = norm.NFC.String(strings.TrimSpace(v))
	}
	return out
}

// Keys returns the field names in sorted order.
func (fs FieldSet) Keys() []string {
	keys := make([]string, 0, len(fs))
	for k := range fs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseField splits a "key=value" pair.
func ParseField(s string) (key, value string, err error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("field %q: want key=value", s)
	}
	return key, value, nil
}

// FieldsFor lists the keys a layout's update draw reads.
func FieldsFor(kind LayoutKind) []string {
	switch kind {
	case LayoutStudent:
		return []string{FieldName, FieldClass, FieldGeneration, FieldClub}
	case LayoutInfluencer:
		return []string{FieldName, FieldSNS, FieldFollowers, FieldContent}
	case LayoutDefault:
		return nil
	}
	return nil
}

// StudentClubs is the club catalogue offered by the student card form.
var StudentClubs = []string{
	"경영리더십탐구부", "공학탐구부", "과학신문부", "독서토론부", "국어탐구부",
	"모의유엔부", "물리부", "생명과학부", "수학다큐연구부", "수학연구부",
	"신문부", "심리부", "역사탐방부", "영상과학탐구부", "영자신문부",
	"응용통계수학부", "철학부", "자유주제탐구부", "미래탐구부", "코딩수학부",
	"통섭연구부", "프로그래밍부", "화학부", "환경과학부", "현대과학연구부",
	"영어성경부", "모형제작부", "문예부", "문헌정보부", "미술부",
	"방송부", "밴드부", "사진부", "오케스트라", "보드게임부",
	"당구부", "산악부", "스포츠클라이밍부", "안타레스(농구)", "자전거부",
	"빙구부", "축구부", "트레이닝부", "RCY", "인터랙트",
	"학생문화개선부",
}

// IsStudentClub reports whether club is in StudentClubs.
func IsStudentClub(club string) bool {
	for _, c := range StudentClubs {
		if c == club {
			return true
		}
	}
	return false
}
