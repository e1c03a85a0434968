package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"activity-insights/internal/analysis"
	"activity-insights/internal/store"
)

// QueryService loads activities and runs the engine over them
type QueryService struct {
	store  *store.DB
	engine *analysis.Engine
}

// NewQueryService creates a new query service
func NewQueryService(db *store.DB, engine *analysis.Engine) *QueryService {
	return &QueryService{store: db, engine: engine}
}

// ActivitiesReport is a user's activities in a date range plus their aggregations
type ActivitiesReport struct {
	Activities       []store.Activity                   `json:"activities"`
	Aggregation      map[string]analysis.AggregationDTO `json:"aggregation"`
	TimeAggregations analysis.MonthlyAggregations       `json:"time_aggregations"`
}

// ActivityDetail is an activity together with its GPS track
type ActivityDetail struct {
	Activity    store.Activity     `json:"activity"`
	TrackPoints []store.TrackPoint `json:"track_points"`
}

// ActivitiesReport aggregates a user's activities between from and to (inclusive days).
// Zero bounds are open. Returns store.ErrUserNotFound for unknown users.
func (q *QueryService) ActivitiesReport(userID uuid.UUID, from, to time.Time) (*ActivitiesReport, error) {
	if _, err := q.store.GetUser(userID); err != nil {
		return nil, err
	}

	activities, err := q.store.ListActivities(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	if activities == nil {
		activities = []store.Activity{}
	}

	aggs, monthly := q.engine.Aggregate(activities)
	return &ActivitiesReport{
		Activities:       activities,
		Aggregation:      aggs,
		TimeAggregations: monthly,
	}, nil
}

// Aggregations returns only the per-type aggregations over all of a user's activities
func (q *QueryService) Aggregations(userID uuid.UUID) (map[string]analysis.AggregationDTO, error) {
	report, err := q.ActivitiesReport(userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	return report.Aggregation, nil
}

// ActivityDetail returns an activity and its track points
func (q *QueryService) ActivityDetail(activityID uuid.UUID) (*ActivityDetail, error) {
	a, err := q.store.GetActivity(activityID)
	if err != nil {
		return nil, err
	}

	points, err := q.TrackPoints(activityID)
	if err != nil {
		return nil, err
	}
	return &ActivityDetail{Activity: *a, TrackPoints: points}, nil
}

// TrackPoints returns an activity's GPS samples, newest first
func (q *QueryService) TrackPoints(activityID uuid.UUID) ([]store.TrackPoint, error) {
	points, err := q.store.ListTrackPoints(activityID)
	if err != nil {
		return nil, fmt.Errorf("listing track points: %w", err)
	}
	if points == nil {
		points = []store.TrackPoint{}
	}
	return points, nil
}

// IsNotFound reports whether err means a requested row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrUserNotFound) || errors.Is(err, store.ErrActivityNotFound)
}
