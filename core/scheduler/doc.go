package scheduler

// Package scheduler turns maintenance outlooks into dated work plans.
// It places jobs close to their recommended dates respecting yard capacity
// and port-call windows. Plans can be exported to JSON or CSV.
