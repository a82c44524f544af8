package models

type DashboardStats struct {
	ProfilesTotal     int `json:"profiles_total"`
	TeamsTotal        int `json:"teams_total"`
	TournamentsTotal  int `json:"tournaments_total"`
	ActiveTournaments int `json:"active_tournaments"`
	MatchesTotal      int `json:"matches_total"`
	FinishedMatches   int `json:"finished_matches"`
}
