package stage

import "fmt"

// Axis selects one stage axis by motor index.
type Axis int

const (
	AxisX Axis = 1
	AxisY Axis = 2
	AxisZ Axis = 3
)

// String returns the controller's position-query letter for the axis.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

func validAxis(a Axis) error {
	if a < AxisX || a > AxisZ {
		return fmt.Errorf("stage: invalid axis %d", a)
	}

	return nil
}

// Direction names a translation in bench coordinates, for callers who
// think in "move the probe left" terms rather than motor indices.
type Direction int

const (
	Left Direction = iota
	Right
	Forward
	Back
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Forward:
		return "forward"
	case Back:
		return "back"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Move is one commanded translation, resolved to a motor index and a
// signed step count when it is built. The zero value is not a valid
// move; construct through Along or Toward.
type Move struct {
	axis  Axis
	steps int
}

// Along builds a Move on an explicit axis. steps may be negative to
// reverse the travel sense.
func Along(axis Axis, steps int) (Move, error) {
	if err := validAxis(axis); err != nil {
		return Move{}, err
	}

	return Move{axis: axis, steps: steps}, nil
}

// Toward builds a Move from a bench direction and a non-negative
// magnitude. Left/Right travel the X axis, Back/Forward the Y axis and
// Down/Up the Z axis, with the first of each pair the negative sense.
func Toward(dir Direction, steps int) (Move, error) {
	if steps < 0 {
		return Move{}, fmt.Errorf("stage: magnitude must be non-negative, got %d", steps)
	}

	switch dir {
	case Left:
		return Move{axis: AxisX, steps: -steps}, nil
	case Right:
		return Move{axis: AxisX, steps: steps}, nil
	case Back:
		return Move{axis: AxisY, steps: -steps}, nil
	case Forward:
		return Move{axis: AxisY, steps: steps}, nil
	case Down:
		return Move{axis: AxisZ, steps: -steps}, nil
	case Up:
		return Move{axis: AxisZ, steps: steps}, nil
	default:
		return Move{}, fmt.Errorf("stage: unknown direction %d", dir)
	}
}

// Axis returns the motor index the move drives.
func (m Move) Axis() Axis { return m.axis }

// Steps returns the signed step count.
func (m Move) Steps() int { return m.steps }
