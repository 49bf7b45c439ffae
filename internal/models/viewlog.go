package models

// ViewLog records who opened a property or inquiry, and when. Logs are kept
// newest first and never pruned.
type ViewLog struct {
	Key          string `json:"key"`
	SubjectID    string `json:"subjectId"`
	SubjectLabel string `json:"subjectLabel"`
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	UserRole     string `json:"userRole"`
	ViewedAt     string `json:"viewedAt"`
	Timestamp    int64  `json:"timestamp"`
}

func (v ViewLog) RecordKey() string { return v.Key }

func (v ViewLog) WithKey(key string) ViewLog {
	v.Key = key
	return v
}
