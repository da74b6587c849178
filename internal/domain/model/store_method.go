package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidStoreMethods = errors.New("invalid store methods")

type StoreMethodStatus string

const (
	StoreMethodActive   StoreMethodStatus = "Aktif"
	StoreMethodInactive StoreMethodStatus = "Nonaktif"
)

// 支払い・配送方法1件（正規化後）
type StoreMethod struct {
	Method string            `json:"method"`
	Label  string            `json:"label"`
	Status StoreMethodStatus `json:"status"`
}

func (m StoreMethod) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(string(m.Status)), string(StoreMethodActive))
}

type StoreMethods []StoreMethod

// method か label に大文字小文字を無視して一致する最初の1件を返す。
func (ms StoreMethods) Find(requested string) (StoreMethod, bool) {
	want := strings.TrimSpace(requested)
	if want == "" {
		return StoreMethod{}, false
	}
	for _, m := range ms {
		if (m.Method != "" && strings.EqualFold(m.Method, want)) ||
			(m.Label != "" && strings.EqualFold(m.Label, want)) {
			return m, true
		}
	}
	return StoreMethod{}, false
}

// ParseStoreMethods は保存されたJSONを StoreMethods に直す。
//
// 受け付ける形:
//   - [{"method":"COD","label":"Bayar di tempat","status":"Aktif"}, ...]
//   - ["COD", "Transfer"]（status なしは Nonaktif 扱い）
//   - 上のどちらかをJSON文字列にしたもの
//
// 読めないものは空リスト。
func ParseStoreMethods(raw []byte) StoreMethods {
	return parseStoreMethods(raw, true)
}

func parseStoreMethods(raw []byte, allowString bool) StoreMethods {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return StoreMethods{}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		//JSON文字列の中にJSONが入っているケース
		var s string
		if allowString && json.Unmarshal(raw, &s) == nil {
			return parseStoreMethods([]byte(s), false)
		}
		return StoreMethods{}
	}

	out := make(StoreMethods, 0, len(elems))
	for _, e := range elems {
		m, ok := normalizeStoreMethod(e)
		if !ok {
			continue
		}
		out = append(out, m)
	}
	return out
}

func normalizeStoreMethod(e json.RawMessage) (StoreMethod, bool) {
	if bytes.Equal(bytes.TrimSpace(e), []byte("null")) {
		return StoreMethod{}, false
	}
	var s string
	if err := json.Unmarshal(e, &s); err == nil {
		s = strings.TrimSpace(s)
		return StoreMethod{Method: s, Label: s, Status: StoreMethodInactive}, true
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(e, &obj); err != nil || obj == nil {
		return StoreMethod{}, false
	}

	method, _ := firstString(obj, "method", "value")
	label, ok := firstString(obj, "label", "method", "value")
	if !ok {
		label = method
	}
	status, ok := firstString(obj, "status")
	if !ok {
		status = string(StoreMethodInactive)
	}

	return StoreMethod{
		Method: method,
		Label:  label,
		Status: StoreMethodStatus(status),
	}, true
}

// 最初に存在する（nullでない）キーの値を文字列で返す
func firstString(obj map[string]interface{}, keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t), true
		case float64, bool:
			return fmt.Sprint(t), true
		default:
			return "", true
		}
	}
	return "", false
}

// NormalizeStoreMethods は管理画面から保存する一覧を検証して整える。
// 配列（オブジェクトか文字列）だけを受け付け、読めない要素があれば全体をエラーにする。
// status は Aktif / Nonaktif のどちらかにそろえる。
func NormalizeStoreMethods(raw []byte) (StoreMethods, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(raw), &elems); err != nil || elems == nil {
		return nil, fmt.Errorf("%w: array required", ErrInvalidStoreMethods)
	}

	ms := parseStoreMethods(raw, false)
	if len(ms) != len(elems) {
		return nil, fmt.Errorf("%w: unreadable entry", ErrInvalidStoreMethods)
	}

	seen := make(map[string]struct{}, len(ms))
	for i, m := range ms {
		if m.Method == "" {
			return nil, fmt.Errorf("%w: method required", ErrInvalidStoreMethods)
		}
		key := strings.ToLower(m.Method)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate method %s", ErrInvalidStoreMethods, m.Method)
		}
		seen[key] = struct{}{}

		ms[i].Status = StoreMethodInactive
		if m.IsActive() {
			ms[i].Status = StoreMethodActive
		}
	}
	return ms, nil
}
