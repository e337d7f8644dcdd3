package domain

// DeviceConfig describes the motor, driver and controller link. It is built
// once at startup and passed by value; nothing mutates it afterwards.
type DeviceConfig struct {
	MotorStepsPerRev int
	Microsteps       int
	FeedRate         float64
	SerialPort       string
	BaudRate         int
}

// StepsPerRevolution is full steps times the microstep factor, e.g. 200*16 = 3200.
func (c DeviceConfig) StepsPerRevolution() int {
	return c.MotorStepsPerRev * c.Microsteps
}

// MotionPlan is the concrete protocol line and step metadata for one Move.
type MotionPlan struct {
	ProtocolLine   string
	SignedDistance float64
	TotalSteps     int
}
