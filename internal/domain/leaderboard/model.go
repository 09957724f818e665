// Package leaderboard defines the ranked coin standings projection.
package leaderboard

// Entry is a row of the leaderboard view: user profiles ranked by total
// coins descending, with the rank computed server-side.
type Entry struct {
	ID                   string `json:"id"`
	FullName             string `json:"full_name"`
	StudentID            string `json:"student_id"`
	Semester             int    `json:"semester"`
	TotalCoins           int    `json:"total_coins"`
	CoinsEarned          int    `json:"coins_earned"`
	UploadedFilesCount   int    `json:"uploaded_files_count"`
	DownloadedFilesCount int    `json:"downloaded_files_count"`
	Rank                 int    `json:"rank"`
}
