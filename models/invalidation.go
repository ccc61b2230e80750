package models

import (
	"github.com/itehadironstore/steelbooks_backend/utils"
)

// InvalidationSet names what a write made stale: daily balance dates and
// customer khatas. Posting workflows return it to the caller, who owns
// any fan-out to dependent views. There is no event bus in this engine.
type InvalidationSet struct {
	Dates       []DateString `json:"dates"`
	CustomerIds []int        `json:"customer_ids"`
}

func (s *InvalidationSet) AddDate(date DateString) {
	s.Dates = append(s.Dates, date)
}

func (s *InvalidationSet) AddCustomer(customerId int) {
	s.CustomerIds = append(s.CustomerIds, customerId)
}

func (s *InvalidationSet) Merge(other InvalidationSet) {
	s.Dates = append(s.Dates, other.Dates...)
	s.CustomerIds = utils.MergeIntSlices(s.CustomerIds, other.CustomerIds)
}

// Normalize deduplicates in place; Merge and repeated Adds may alias.
func (s *InvalidationSet) Normalize() {
	keys := make([]string, 0, len(s.Dates))
	byKey := make(map[string]DateString, len(s.Dates))
	for _, date := range s.Dates {
		key := date.String()
		if _, ok := byKey[key]; !ok {
			keys = append(keys, key)
			byKey[key] = date
		}
	}
	dates := make([]DateString, 0, len(keys))
	for _, key := range keys {
		dates = append(dates, byKey[key])
	}
	s.Dates = dates
	s.CustomerIds = utils.UniqueSlice(s.CustomerIds)
}

func (s InvalidationSet) IsEmpty() bool {
	return len(s.Dates) == 0 && len(s.CustomerIds) == 0
}
