package gameday_client

const (
	// Base URL
	DefaultBaseURL = "http://localhost:4000/api"

	// API Endpoints
	GamesEndpoint       = "/games"
	GameEndpoint        = "/games/%s"
	PredictEndpoint     = "/games/predict"
	PredictionsEndpoint = "/predictions"

	// Query parameters
	UserIDParam = "userId"
)
