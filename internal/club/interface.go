package club

// ClubStore defines the interface for interacting with the club's data.
type ClubStore interface {
	UpsertPlayer(player Player) error
	UpsertPlayers(players []Player) error
	GetPlayer(playerID string) (*Player, error)
	GetAllPlayers() ([]Player, error)
	SetPairScore(playerA, playerB string, score int) error

	UpsertCourt(court Court) error
	GetCourt(courtID string) (*Court, error)
	GetAllCourts() ([]Court, error)

	GetSettings() (Settings, error)
	UpdateSettings(settings Settings) error

	ConfirmMatch(match ScheduledMatch) error
	GetMatch(matchID string) (*ScheduledMatch, error)
	GetMatchesForDate(date string) ([]ScheduledMatch, error)
	GetMatchesForProcessing() ([]ScheduledMatch, error)
	UpdateProcessingStatus(matchID string, status ProcessingStatus) error

	UpsertSlotTemplate(date, courtID string, slots []string) error
	GetSlotsForDate(date string) ([]string, error)

	Clear()
}
