package model

import "time"

// AuditEntry 审计日志条目（追加后不可修改）
type AuditEntry struct {
	Time   time.Time `json:"time"`
	User   string    `json:"user"`
	Date   time.Time `json:"date"`
	Metric string    `json:"metric"`
	Old    Value     `json:"old"`
	New    Value     `json:"new"`
}

// Change 一个 (日期, 指标) 的变更
type Change struct {
	Date   time.Time `json:"date"`
	Metric string    `json:"metric"`
	Old    Value     `json:"old"`
	New    Value     `json:"new"`
}

// ChangeSet 变更集合（按日期、注册表顺序排列）
type ChangeSet []Change

// Entries 为每条变更生成审计条目，使用同一时间戳和用户
func (cs ChangeSet) Entries(user string, at time.Time) []AuditEntry {
	if len(cs) == 0 {
		return nil
	}
	out := make([]AuditEntry, len(cs))
	for i, c := range cs {
		out[i] = AuditEntry{Time: at, User: user, Date: c.Date, Metric: c.Metric, Old: c.Old, New: c.New}
	}
	return out
}
