package domain

import (
	"time"

	validation "github.com/jellydator/validation"
)

// ProgressMetric is a body-weight progress entry.
type ProgressMetric struct {
	WeightKg       float64   `json:"weight_kg"`
	BodyFatPercent *float64  `json:"body_fat_percent,omitempty"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// Validate checks if the progress metric is valid.
func (p *ProgressMetric) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.WeightKg, validation.Required, validation.Min(1.0), validation.Max(500.0)),
		validation.Field(&p.BodyFatPercent, validation.Min(1.0), validation.Max(75.0)),
		validation.Field(&p.RecordedAt, validation.Required),
	)
}

// BodyMeasurement is a tape measurement at one body site.
type BodyMeasurement struct {
	Site        string    `json:"site"`
	Centimeters float64   `json:"centimeters"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Validate checks if the body measurement is valid.
func (b *BodyMeasurement) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Site, validation.Required, validation.Length(1, 64)),
		validation.Field(&b.Centimeters, validation.Required, validation.Min(1.0), validation.Max(300.0)),
		validation.Field(&b.RecordedAt, validation.Required),
	)
}

// ActivitySnapshot aggregates one day of passive activity data.
type ActivitySnapshot struct {
	Day            string  `json:"day"` // YYYY-MM-DD
	Steps          int     `json:"steps"`
	ActiveCalories int     `json:"active_calories"`
	DistanceMeters float64 `json:"distance_meters"`
}

// Validate checks if the activity snapshot is valid.
func (a *ActivitySnapshot) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Day, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&a.Steps, validation.Min(0)),
		validation.Field(&a.ActiveCalories, validation.Min(0)),
		validation.Field(&a.DistanceMeters, validation.Min(0.0)),
	)
}

// SleepSession is one recorded sleep interval.
type SleepSession struct {
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Quality   int       `json:"quality"` // 1 (worst) to 5 (best)
}

// Validate checks if the sleep session is valid.
func (s *SleepSession) Validate() error {
	err := validation.ValidateStruct(s,
		validation.Field(&s.StartedAt, validation.Required),
		validation.Field(&s.EndedAt, validation.Required),
		validation.Field(&s.Quality, validation.Min(1), validation.Max(5)),
	)
	if err != nil {
		return err
	}
	if !s.EndedAt.After(s.StartedAt) {
		return validation.NewError("validation_sleep_interval", "ended_at must be after started_at")
	}
	return nil
}

// MealLog is one logged meal with its macros.
type MealLog struct {
	Name         string    `json:"name"`
	Calories     int       `json:"calories"`
	ProteinGrams float64   `json:"protein_grams"`
	CarbsGrams   float64   `json:"carbs_grams"`
	FatGrams     float64   `json:"fat_grams"`
	EatenAt      time.Time `json:"eaten_at"`
}

// Validate checks if the meal log is valid.
func (m *MealLog) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&m.Calories, validation.Min(0)),
		validation.Field(&m.ProteinGrams, validation.Min(0.0)),
		validation.Field(&m.CarbsGrams, validation.Min(0.0)),
		validation.Field(&m.FatGrams, validation.Min(0.0)),
		validation.Field(&m.EatenAt, validation.Required),
	)
}

// ExerciseSet is one performed set inside a workout.
type ExerciseSet struct {
	Exercise string  `json:"exercise"`
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weight_kg"`
}

// Validate checks if the exercise set is valid.
func (e ExerciseSet) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Exercise, validation.Required, validation.Length(1, 128)),
		validation.Field(&e.Reps, validation.Required, validation.Min(1)),
		validation.Field(&e.WeightKg, validation.Min(0.0)),
	)
}

// Workout is one completed training session.
type Workout struct {
	Name            string        `json:"name"`
	StartedAt       time.Time     `json:"started_at"`
	DurationSeconds int           `json:"duration_seconds"`
	Sets            []ExerciseSet `json:"sets"`
	Notes           string        `json:"notes,omitempty"`
}

// Validate checks if the workout is valid.
func (w *Workout) Validate() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&w.StartedAt, validation.Required),
		validation.Field(&w.DurationSeconds, validation.Required, validation.Min(1)),
		validation.Field(&w.Sets, validation.Required),
		validation.Field(&w.Notes, validation.Length(0, 2048)),
	)
}

// WorkoutTemplate is a reusable workout plan.
type WorkoutTemplate struct {
	Name      string   `json:"name"`
	Exercises []string `json:"exercises"`
	Notes     string   `json:"notes,omitempty"`
}

// Validate checks if the workout template is valid.
func (w *WorkoutTemplate) Validate() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&w.Exercises, validation.Required, validation.Each(validation.Length(1, 128))),
		validation.Field(&w.Notes, validation.Length(0, 2048)),
	)
}
