// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"fmt"
	"time"
)

// Statistics tracks sample counts and anomaly rates over a telemetry stream
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalSamples   uint64
	CleanSamples   uint64
	DecodeErrors   uint64
	EmptySamples   uint64
	MissingData    uint64
	NoCells        uint64
	MissingICV     uint64
	IncompleteNTC  uint64
	UnknownMOS     uint64
	AnomalousData  uint64
	ICVMismatches  uint64
	InvalidTemps   uint64
	MOSFETOff      uint64
	CellImbalances uint64
	InvalidSOC     uint64

	// Rates (calculated)
	SampleRate float64 // samples/sec
	ErrorRate  float64 // anomalies/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update updates statistics based on one sample's decode error and anomalies
func (s *Statistics) Update(decodeErr error, validationErrors []ValidationError) {
	s.TotalSamples++

	if decodeErr != nil {
		s.DecodeErrors++
		return
	}

	if len(validationErrors) == 0 {
		s.CleanSamples++
	}

	for _, err := range validationErrors {
		switch err.Type {
		case AnomalyNoTokens:
			s.EmptySamples++
			s.MissingData++
		case AnomalyNoCells:
			s.NoCells++
			s.MissingData++
		case AnomalyMissingICV:
			s.MissingICV++
			s.MissingData++
		case AnomalyIncompleteNTC:
			s.IncompleteNTC++
			s.MissingData++
		case AnomalyUnknownMOS:
			s.UnknownMOS++
			s.MissingData++
		case AnomalyICVMismatch:
			s.ICVMismatches++
			s.AnomalousData++
		case AnomalyInvalidTemp:
			s.InvalidTemps++
			s.AnomalousData++
		case AnomalyMOSFETOff:
			s.MOSFETOff++
			s.AnomalousData++
		case AnomalyCellImbalance:
			s.CellImbalances++
			s.AnomalousData++
		case AnomalyInvalidSOC:
			s.InvalidSOC++
			s.AnomalousData++
		}
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates sample and anomaly rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.SampleRate = float64(s.TotalSamples) / elapsed
		s.ErrorRate = float64(s.ErrorCount()) / elapsed
	}
}

// ErrorCount returns decode errors plus every counted anomaly
func (s *Statistics) ErrorCount() uint64 {
	return s.DecodeErrors + s.MissingData + s.AnomalousData
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	percent := func(n uint64) float64 {
		if s.TotalSamples == 0 {
			return 0
		}
		return float64(n) * 100.0 / float64(s.TotalSamples)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Samples:   %8d\n", s.TotalSamples)
	result += fmt.Sprintf("Clean Samples:   %8d (%.1f%%)\n", s.CleanSamples, percent(s.CleanSamples))

	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d (%.1f%%)\n", s.DecodeErrors, percent(s.DecodeErrors))
	}
	if s.MissingData > 0 {
		result += fmt.Sprintf("Missing Data:    %8d\n", s.MissingData)
		if s.EmptySamples > 0 {
			result += fmt.Sprintf("  Empty Samples:    %5d\n", s.EmptySamples)
		}
		if s.NoCells > 0 {
			result += fmt.Sprintf("  No Cells:         %5d\n", s.NoCells)
		}
		if s.MissingICV > 0 {
			result += fmt.Sprintf("  Missing ICV:      %5d\n", s.MissingICV)
		}
		if s.IncompleteNTC > 0 {
			result += fmt.Sprintf("  Incomplete NTC:   %5d\n", s.IncompleteNTC)
		}
		if s.UnknownMOS > 0 {
			result += fmt.Sprintf("  Unknown MOS:      %5d\n", s.UnknownMOS)
		}
	}
	if s.AnomalousData > 0 {
		result += fmt.Sprintf("Anomalous Values:%8d\n", s.AnomalousData)
		if s.ICVMismatches > 0 {
			result += fmt.Sprintf("  ICV Mismatch:     %5d\n", s.ICVMismatches)
		}
		if s.InvalidTemps > 0 {
			result += fmt.Sprintf("  Invalid Temp:     %5d\n", s.InvalidTemps)
		}
		if s.MOSFETOff > 0 {
			result += fmt.Sprintf("  MOSFET Off:       %5d\n", s.MOSFETOff)
		}
		if s.CellImbalances > 0 {
			result += fmt.Sprintf("  Cell Imbalance:   %5d\n", s.CellImbalances)
		}
		if s.InvalidSOC > 0 {
			result += fmt.Sprintf("  Invalid SOC:      %5d\n", s.InvalidSOC)
		}
	}

	result += fmt.Sprintf("Sample Rate:     %8.1f samples/sec\n", s.SampleRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
