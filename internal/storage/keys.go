package storage

// Key naming for the quiz namespace. Kept in one place so producers and
// consumers cannot drift.

func SessionKey(sessionID string) string { return "quiz:session:" + sessionID }

func UserSessionKey(userID string) string { return "quiz:user:session:" + userID }

func AIBatchKey(userID string) string { return "quiz:ai:batch:" + userID }

func AssessmentKey(userID string) string { return "quiz:assessment:test:" + userID }

func AssessmentResult(userID string) string { return "quiz:assessment:result:" + userID }

func StatsKey(userID string) string { return "quiz:stats:" + userID }

func LibraryKey(userID string) string { return "quiz:library:" + userID }
