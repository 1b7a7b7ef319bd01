package story

// SelectPhase maps story progress to the plot point that should steer the next
// turn. Thresholds are inclusive upper bounds on stepsSoFar/EstimatedSteps.
// The arc must be normalized.
func SelectPhase(arc StoryArc, stepsSoFar int) StoryPhase {
	if stepsSoFar < 0 {
		stepsSoFar = 0
	}
	total := arc.EstimatedSteps
	if total <= 0 {
		total = MinEstimatedSteps
	}

	progress := float64(stepsSoFar) / float64(total)
	switch {
	case progress <= 0.2:
		return arc.PlotPoints[0]
	case progress <= 0.4:
		return arc.PlotPoints[1]
	case progress <= 0.6:
		return arc.PlotPoints[2]
	case progress <= 0.8:
		return arc.PlotPoints[3]
	default:
		return arc.PlotPoints[4]
	}
}

// Progress returns stepsSoFar/EstimatedSteps capped at 1.
func Progress(arc StoryArc, stepsSoFar int) float64 {
	if arc.EstimatedSteps <= 0 || stepsSoFar <= 0 {
		return 0
	}
	p := float64(stepsSoFar) / float64(arc.EstimatedSteps)
	if p > 1 {
		return 1
	}
	return p
}
