package domain

// MaxWatchHistory bounds the number of entries kept on a user
const MaxWatchHistory = 10
