package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// RatingField identifies a numeric 1-5 survey rating.
	RatingField string

	// ThemeDimension identifies a categorical answer that is tallied into themes.
	ThemeDimension string

	// InsightField identifies a free-text answer surfaced as qualitative excerpts.
	InsightField string

	// Granularity is the period used to bucket ratings over time.
	Granularity string

	// ThemeBasis decides what a single theme occurrence is.
	ThemeBasis string

	// ReportKind names the kind of report a run produced.
	ReportKind string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	XLSXOut    OutputMode = "xlsx"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All rating fields supported.
const (
	RelevanceRating RatingField = "relevance"
	SupportRating   RatingField = "support"
	UrgencyRating   RatingField = "urgency"
)

// All theme dimensions supported.
const (
	PressureTheme  ThemeDimension = "pressure"
	ChallengeTheme ThemeDimension = "challenge"
	ObstacleTheme  ThemeDimension = "obstacle"
	TakeawayTheme  ThemeDimension = "takeaway"
)

// All insight fields supported.
const (
	UnsharedInsight InsightField = "unshared"
	TakeawayInsight InsightField = "takeaway"
	BarrierInsight  InsightField = "barrier"
)

// All trend granularities supported.
const (
	DayGranularity   Granularity = "day" // default
	WeekGranularity  Granularity = "week"
	MonthGranularity Granularity = "month"
)

// All theme counting bases supported.
const (
	MentionBasis ThemeBasis = "mentions" // default
	SessionBasis ThemeBasis = "sessions"
)

// All report kinds recorded in run history.
const (
	OverviewReport   ReportKind = "overview"
	PartnerKind      ReportKind = "partner"
	ComparisonKind   ReportKind = "comparison"
	ThemesReport     ReportKind = "themes"
	TrendsReport     ReportKind = "trends"
	PartnerExport    ReportKind = "partner_export"
	ComparisonExport ReportKind = "comparison_export"
)

// Rating bounds. Anything outside is excluded from aggregates.
const (
	MinRating = 1
	MaxRating = 5
)

// MaxInsightExcerpts caps the qualitative excerpts exported per insight field.
const MaxInsightExcerpts = 20

// AllRatingFields lists rating fields in report order.
var AllRatingFields = []RatingField{RelevanceRating, SupportRating, UrgencyRating}

// CoreThemeDimensions are the dimensions every source must provide.
var CoreThemeDimensions = []ThemeDimension{PressureTheme, ChallengeTheme, ObstacleTheme}

// AllThemeDimensions lists every dimension in report order.
var AllThemeDimensions = []ThemeDimension{PressureTheme, ChallengeTheme, ObstacleTheme, TakeawayTheme}

// AllInsightFields lists insight fields in report order.
var AllInsightFields = []InsightField{UnsharedInsight, TakeawayInsight, BarrierInsight}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	XLSXOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidRatingFields lists all valid rating fields.
var ValidRatingFields = map[RatingField]struct{}{
	RelevanceRating: {},
	SupportRating:   {},
	UrgencyRating:   {},
}

// ValidThemeDimensions lists all valid theme dimensions.
var ValidThemeDimensions = map[ThemeDimension]struct{}{
	PressureTheme:  {},
	ChallengeTheme: {},
	ObstacleTheme:  {},
	TakeawayTheme:  {},
}

// ValidGranularities lists all valid trend granularities.
var ValidGranularities = map[Granularity]struct{}{
	DayGranularity:   {},
	WeekGranularity:  {},
	MonthGranularity: {},
}

// ValidThemeBases lists all valid theme counting bases.
var ValidThemeBases = map[ThemeBasis]struct{}{
	MentionBasis: {},
	SessionBasis: {},
}

// ThemeTitles are the display titles for each theme dimension.
var ThemeTitles = map[ThemeDimension]string{
	PressureTheme:  "Top Organizational Pressures",
	ChallengeTheme: "Recurring Leadership Challenges",
	ObstacleTheme:  "Implementation Obstacles",
	TakeawayTheme:  "Most Valuable Takeaways",
}

// RatingTitles are the display titles for each rating field.
var RatingTitles = map[RatingField]string{
	RelevanceRating: "Relevance",
	SupportRating:   "Support",
	UrgencyRating:   "Urgency",
}

// InsightTitles are the display titles for each insight field.
var InsightTitles = map[InsightField]string{
	UnsharedInsight: "Anything Else To Share",
	TakeawayInsight: "Most Valuable Takeaway",
	BarrierInsight:  "Barriers To Applying Learning",
}
