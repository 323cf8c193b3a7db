package impact

// Feature keys recognized by the impact model. The coefficient artifact maps
// these to trained weights; an absent key contributes zero and is surfaced as
// a configuration gap.
const (
	FeatureScoringEff   = "scoring_eff"
	FeatureVolumeDev    = "volume_dev"
	FeatureAssistDev    = "ast_dev"
	FeatureORebDev      = "orb_dev"
	FeatureDRebDev      = "drb_dev"
	FeatureStealDev     = "stl_dev"
	FeatureBlockDev     = "blk_dev"
	FeatureTurnoverDev  = "tov_dev"
	FeatureFoulDev      = "pf_dev"
	FeatureThreeDev     = "tpm_dev"
	FeatureAssistBig    = "ast_x_big"
	FeatureScoringVol   = "scoring_x_vol"
	FeatureTeamNet      = "team_net_rtg"
	positionOffsetPfx   = "pos_"
	fallbackTrueShotPct = 0.56
)

// LeagueAverages holds league-wide per-100 rates, supplied alongside the
// trained coefficients. They are a precomputed artifact, never derived here.
type LeagueAverages struct {
	Points             float64 `json:"pts_100"`
	FieldGoalAttempts  float64 `json:"fga_100"`
	FreeThrowAttempts  float64 `json:"fta_100"`
	ThreePointMade     float64 `json:"tpm_100"`
	OffensiveRebounds  float64 `json:"orb_100"`
	DefensiveRebounds  float64 `json:"drb_100"`
	Assists            float64 `json:"ast_100"`
	Steals             float64 `json:"stl_100"`
	Blocks             float64 `json:"blk_100"`
	Turnovers          float64 `json:"tov_100"`
	PersonalFouls      float64 `json:"pf_100"`
}

// Coefficients is the immutable trained-model artifact: intercept, feature
// weights, position offsets, and league averages. Loaded once per run.
type Coefficients struct {
	ModelVersion   string
	Intercept      float64
	Weights        map[string]float64
	LeagueAverages LeagueAverages
}

// Weight returns the coefficient for a feature and whether it is present.
func (c Coefficients) Weight(feature string) (float64, bool) {
	w, ok := c.Weights[feature]
	return w, ok
}

// PositionOffset returns the trained offset for a position label, zero when
// the artifact carries none.
func (c Coefficients) PositionOffset(position string) float64 {
	return c.Weights[positionOffsetPfx+position]
}

// HasTeamContext reports whether the artifact includes a team-context term.
func (c Coefficients) HasTeamContext() bool {
	_, ok := c.Weights[FeatureTeamNet]
	return ok
}
