package store

import "context"

type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ResearchRecord is one completed research cycle. Failed cycles are never
// recorded.
type ResearchRecord struct {
	ID        string
	SessionID string
	Query     string
	Mode      string
	Breadth   int
	Depth     int
	Answers   []Answer
	Result    string
	CreatedAt string
}

type Store interface {
	SaveRecord(ctx context.Context, record ResearchRecord) error
	GetRecord(ctx context.Context, recordID string) (*ResearchRecord, error)
	ListRecords(ctx context.Context, limit int) ([]ResearchRecord, error)
	DeleteRecord(ctx context.Context, recordID string) error
}

func CloneAnswers(answers []Answer) []Answer {
	if answers == nil {
		return nil
	}
	return append([]Answer{}, answers...)
}
