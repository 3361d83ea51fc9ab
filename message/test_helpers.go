package message

import "github.com/stretchr/testify/mock"

// MatchHistory creates a custom matcher for history arguments in mocks
func MatchHistory(matcher func(History) bool) interface{} {
	return mock.MatchedBy(matcher)
}
