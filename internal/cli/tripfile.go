package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/routing"
)

// TripFile is the YAML form of a trip. Routes lists known legs; any leg not
// listed is asked of OpenRouteService when a key is configured.
//
//	current_location: Chicago, IL
//	pickup_location: Joliet, IL
//	dropoff_location: Denver, CO
//	cycle_hours_used: 12
//	start_time: 2025-06-02T06:00:00-05:00
//	time_zone: America/Chicago
//	routes:
//	  - {from: "Chicago, IL", to: "Joliet, IL", miles: 45, minutes: 50}
//	  - {from: "Joliet, IL", to: "Denver, CO", miles: 960, minutes: 900}
type TripFile struct {
	CurrentLocation string        `yaml:"current_location"`
	PickupLocation  string        `yaml:"pickup_location"`
	DropoffLocation string        `yaml:"dropoff_location"`
	CycleHoursUsed  float64       `yaml:"cycle_hours_used"`
	StartTime       time.Time     `yaml:"start_time"`
	TimeZone        string        `yaml:"time_zone"`
	Routes          []routing.Leg `yaml:"routes"`
}

// ReadTripFile decodes and checks a trip file. Unknown keys are rejected so
// a typo does not silently drop a leg.
func ReadTripFile(path string) (TripFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TripFile{}, fmt.Errorf("cli.ReadTripFile: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var tf TripFile
	if err := dec.Decode(&tf); err != nil {
		return TripFile{}, fmt.Errorf("cli.ReadTripFile: %s: %w", path, err)
	}
	if tf.StartTime.IsZero() {
		return TripFile{}, fmt.Errorf("cli.ReadTripFile: %s: %w: start_time is required", path, domain.ErrValidation)
	}
	if tf.TimeZone == "" {
		tf.TimeZone = "UTC"
	}
	if _, err := time.LoadLocation(tf.TimeZone); err != nil {
		return TripFile{}, fmt.Errorf("cli.ReadTripFile: %s: %w: unknown time_zone %q", path, domain.ErrValidation, tf.TimeZone)
	}
	return tf, nil
}

// Input converts the file into scheduler input. The trip ID is derived from
// the trip fields, so the same file always produces the same log.
func (tf TripFile) Input() domain.TripInput {
	trip := domain.Trip{
		CurrentLocation: strings.TrimSpace(tf.CurrentLocation),
		PickupLocation:  strings.TrimSpace(tf.PickupLocation),
		DropoffLocation: strings.TrimSpace(tf.DropoffLocation),
		CycleHoursUsed:  tf.CycleHoursUsed,
		StartTime:       tf.StartTime,
		TimeZone:        tf.TimeZone,
	}
	key := fmt.Sprintf("%s|%s|%s|%g|%s|%s", trip.CurrentLocation, trip.PickupLocation,
		trip.DropoffLocation, trip.CycleHoursUsed, trip.StartTime.UTC().Format(time.RFC3339), trip.TimeZone)
	trip.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	return trip.Input()
}
