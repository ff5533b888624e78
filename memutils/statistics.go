package memutils

import "math"

// Statistics contains basic totals for a set of heap regions. All sizes are in bytes.
type Statistics struct {
	RegionCount int
	ObjectCount int
	RegionBytes int
	ObjectBytes int
}

func (s *Statistics) Clear() {
	s.RegionCount = 0
	s.ObjectCount = 0
	s.RegionBytes = 0
	s.ObjectBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.RegionCount += other.RegionCount
	s.ObjectCount += other.ObjectCount
	s.RegionBytes += other.RegionBytes
	s.ObjectBytes += other.ObjectBytes
}

// DetailedStatistics extends Statistics with information about dead ranges and the
// size distribution of objects. Clear must be called before the first Add.
type DetailedStatistics struct {
	Statistics
	DeadRangeCount   int
	DeadRangeBytes   int
	ObjectSizeMin    int
	ObjectSizeMax    int
	DeadRangeSizeMin int
	DeadRangeSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.DeadRangeCount = 0
	s.DeadRangeBytes = 0
	s.ObjectSizeMin = math.MaxInt
	s.ObjectSizeMax = 0
	s.DeadRangeSizeMin = math.MaxInt
	s.DeadRangeSizeMax = 0
}

func (s *DetailedStatistics) AddDeadRange(size int) {
	s.DeadRangeCount++
	s.DeadRangeBytes += size

	if size < s.DeadRangeSizeMin {
		s.DeadRangeSizeMin = size
	}

	if size > s.DeadRangeSizeMax {
		s.DeadRangeSizeMax = size
	}
}

func (s *DetailedStatistics) AddObject(size int) {
	s.ObjectCount++
	s.ObjectBytes += size

	if size < s.ObjectSizeMin {
		s.ObjectSizeMin = size
	}

	if size > s.ObjectSizeMax {
		s.ObjectSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.DeadRangeCount += other.DeadRangeCount
	s.DeadRangeBytes += other.DeadRangeBytes

	if other.DeadRangeSizeMin < s.DeadRangeSizeMin {
		s.DeadRangeSizeMin = other.DeadRangeSizeMin
	}

	if other.DeadRangeSizeMax > s.DeadRangeSizeMax {
		s.DeadRangeSizeMax = other.DeadRangeSizeMax
	}

	if other.ObjectSizeMin < s.ObjectSizeMin {
		s.ObjectSizeMin = other.ObjectSizeMin
	}

	if other.ObjectSizeMax > s.ObjectSizeMax {
		s.ObjectSizeMax = other.ObjectSizeMax
	}
}
