package models

type PlayerProfile struct {
	ProfileID      string `json:"profileId"`
	UserID         string `json:"userId"`
	PlatformType   string `json:"platformType"`
	IDOnPlatform   string `json:"idOnPlatform"`
	NameOnPlatform string `json:"nameOnPlatform"`
}

// Ranked stats of one player for one season and region
type PlayerStats struct {
	MaxMMR                    float64 `json:"max_mmr"`
	SkillMean                 float64 `json:"skill_mean"`
	Deaths                    int     `json:"deaths"`
	ProfileID                 string  `json:"profile_id"`
	NextRankMMR               float64 `json:"next_rank_mmr"`
	Rank                      int     `json:"rank"`
	MaxRank                   int     `json:"max_rank"`
	BoardID                   string  `json:"board_id"`
	SkillStdev                float64 `json:"skill_stdev"`
	Kills                     int     `json:"kills"`
	LastMatchSkillStdevChange float64 `json:"last_match_skill_stdev_change"`
	UpdateTime                string  `json:"update_time"` // 2020-08-23T12:05:48.558000+00:00
	LastMatchMMRChange        float64 `json:"last_match_mmr_change"`
	Abandons                  int     `json:"abandons"`
	Season                    int     `json:"season"`
	TopRankPosition           int     `json:"top_rank_position"`
	LastMatchSkillMeanChange  float64 `json:"last_match_skill_mean_change"`
	MMR                       float64 `json:"mmr"`
	PreviousRankMMR           float64 `json:"previous_rank_mmr"`
	LastMatchResult           int     `json:"last_match_result"`
	Wins                      int     `json:"wins"`
	Region                    string  `json:"region"` // apac, emea, ncsa
	Losses                    int     `json:"losses"`
}

// Profile id -> "metric:window" -> value
// Open set of metrics, the service does not know them in advance
type PopulationsStatistics map[string]map[string]int

type PlayerXPProfile struct {
	XP                 int    `json:"xp"`
	ProfileID          string `json:"profile_id"`
	LootboxProbability int    `json:"lootbox_probability"`
	Level              int    `json:"level"`
}
