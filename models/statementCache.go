package models

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/utils"
)

// Read cache for computed daily statements. Redis is an accelerator only:
// every helper degrades to a miss/no-op without it, and every posting
// workflow invalidates through InvalidateStatements before returning, so a
// stale snapshot can never outlive the write that made it stale.

func statementCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_STATEMENT_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

// statementCacheTTL prefers STATEMENT_CACHE_TTL_SECONDS, else the shared
// CACHE_LIFESPAN default.
func statementCacheTTL() time.Duration {
	if v := strings.TrimSpace(os.Getenv("STATEMENT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return utils.GetCacheLifespan()
}

const statementCacheKeySet = "statementCache:keys"

func dailyStatementCacheKey(date DateString) string {
	return "dailyStatement:" + date.String()
}

func customerStatementKeyPrefix(customerId int) string {
	return fmt.Sprintf("customerStatement:%d", customerId)
}

func customerStatementCacheKey(customerId int, fromDate *DateString, toDate *DateString) string {
	from, to := "", ""
	if fromDate != nil {
		from = fromDate.String()
	}
	if toDate != nil {
		to = toDate.String()
	}
	return fmt.Sprintf("%s:%s:%s", customerStatementKeyPrefix(customerId), from, to)
}

func getCachedCustomerStatement(customerId int, fromDate *DateString, toDate *DateString, dest *CustomerStatementResponse) (bool, error) {
	if !statementCacheEnabled() {
		return false, nil
	}
	return config.GetRedisObject(customerStatementCacheKey(customerId, fromDate, toDate), dest)
}

func cacheCustomerStatement(customerId int, fromDate *DateString, toDate *DateString, response *CustomerStatementResponse) {
	if !statementCacheEnabled() {
		return
	}
	key := customerStatementCacheKey(customerId, fromDate, toDate)
	if err := config.SetRedisObject(key, response, statementCacheTTL()); err != nil {
		return
	}
	_ = config.AddRedisSet(statementCacheKeySet, key)
}

func getCachedDailyStatement(date DateString, dest *DailyCashStatementResponse) (bool, error) {
	if !statementCacheEnabled() {
		return false, nil
	}
	return config.GetRedisObject(dailyStatementCacheKey(date), dest)
}

func cacheDailyStatement(date DateString, response *DailyCashStatementResponse) {
	if !statementCacheEnabled() {
		return
	}
	key := dailyStatementCacheKey(date)
	if err := config.SetRedisObject(key, response, statementCacheTTL()); err != nil {
		return
	}
	// Track live keys in a set so invalidation never scans the keyspace.
	_ = config.AddRedisSet(statementCacheKeySet, key)
}

// InvalidateStatements drops every cached view an InvalidationSet names.
// Customer keys are windowed (one per query shape), so those drop by prefix
// over the tracked key set.
func InvalidateStatements(set InvalidationSet) {
	if !statementCacheEnabled() {
		return
	}
	for _, date := range set.Dates {
		key := dailyStatementCacheKey(date)
		_ = config.RemoveRedisKey(key)
		_ = config.RemoveRedisSetMember(statementCacheKeySet, key)
	}
	if len(set.CustomerIds) == 0 {
		return
	}
	members, err := config.GetRedisSetMembers(statementCacheKeySet)
	if err != nil {
		return
	}
	for _, customerId := range set.CustomerIds {
		prefix := customerStatementKeyPrefix(customerId)
		for _, member := range members {
			if strings.HasPrefix(member, prefix) {
				_ = config.RemoveRedisKey(member)
				_ = config.RemoveRedisSetMember(statementCacheKeySet, member)
			}
		}
	}
}
