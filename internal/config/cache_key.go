package config

import (
	"fmt"
	"strings"
)

type CacheKeyStruct struct {
	// AttemptLog holds every finalized attempt as one JSON array.
	AttemptLog string
	// QuestionPayload holds the cached aptitude question bank.
	QuestionPayload string
	// AttemptFeedChannel is the PubSub channel staff dashboards listen on.
	AttemptFeedChannel string
	// PositionList caches the public job position list.
	PositionList string
}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{
		AttemptLog:         "userTests",
		QuestionPayload:    "aptitude:questions:payload",
		AttemptFeedChannel: "aptitude:attempts:feed",
		PositionList:       "positions:list",
	}
}

// StaffSessionKey returns the cache key for a staff member's login session
func (r *CacheKeyStruct) StaffSessionKey(staffID int) string {
	return fmt.Sprintf("staff_login:%d", staffID)
}

// CandidateSessionKey returns the cache key for a candidate's login session
func (r *CacheKeyStruct) CandidateSessionKey(email string) string {
	return fmt.Sprintf("candidate_login:%s", strings.ToLower(email))
}

var CacheKey = NewCacheKeyStruct()
