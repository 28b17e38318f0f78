package scpi

import (
	"fmt"
	"strconv"
	"strings"
)

// IEEE 488.2 common operations, expressed over Bus so they work the same
// through a Client socket or a Prologix GPIB controller.

// Identify returns the instrument's *IDN? string
// (manufacturer,model,serial,firmware).
func Identify(bus Bus) (string, error) {
	return bus.Query("*IDN?")
}

// Reset issues *RST, returning the instrument to its power-on defaults.
func Reset(bus Bus) error {
	return bus.Command("*RST")
}

// Clear issues *CLS, clearing the instrument's status and error queues.
func Clear(bus Bus) error {
	return bus.Command("*CLS")
}

// OperationComplete blocks on *OPC? until the instrument reports all
// pending overlapped commands finished.
func OperationComplete(bus Bus) error {
	resp, err := bus.Query("*OPC?")
	if err != nil {
		return err
	}
	if strings.TrimSpace(resp) != "1" {
		return fmt.Errorf("scpi: unexpected *OPC? reply %q", resp)
	}

	return nil
}

// QueryFloat sends cmd and parses the reply as a float64. Instruments
// answer numeric queries in scientific notation ("+1.00000E+03"), which
// ParseFloat handles directly.
func QueryFloat(bus Bus, cmd string) (float64, error) {
	resp, err := bus.Query(cmd)
	if err != nil {
		return 0, err
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(resp), 64)
	if err != nil {
		return 0, fmt.Errorf("scpi: reply %q to %q is not a number: %w", resp, cmd, err)
	}

	return f, nil
}

// QueryInt sends cmd and parses the reply as an int. The reply is parsed
// as a float first because instruments report integer settings in
// scientific notation ("+1.0E+04" for 10000).
func QueryInt(bus Bus, cmd string) (int, error) {
	f, err := QueryFloat(bus, cmd)
	if err != nil {
		return 0, err
	}

	return int(f), nil
}

// QueryBool sends cmd and interprets the reply as an on/off state.
// Instruments answer boolean queries with "0"/"1" or "OFF"/"ON".
func QueryBool(bus Bus, cmd string) (bool, error) {
	resp, err := bus.Query(cmd)
	if err != nil {
		return false, err
	}

	switch strings.ToUpper(strings.TrimSpace(resp)) {
	case "1", "ON":
		return true, nil
	case "0", "OFF":
		return false, nil
	default:
		return false, fmt.Errorf("scpi: reply %q to %q is not a boolean", resp, cmd)
	}
}

// PopError pops one entry from the instrument's error queue (SYST:ERR?).
// It returns nil when the queue reports no error, and a *DeviceError
// otherwise. Drain the queue by calling it until nil.
func PopError(bus Bus) error {
	resp, err := bus.Query("SYST:ERR?")
	if err != nil {
		return err
	}

	code, msg, err := parseDeviceError(resp)
	if err != nil {
		return err
	}
	if code == 0 {
		return nil
	}

	return &DeviceError{Code: code, Message: msg}
}

// parseDeviceError splits a `<code>,"<message>"` error-queue reply.
func parseDeviceError(resp string) (int, string, error) {
	parts := strings.SplitN(resp, ",", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("scpi: unparseable error-queue reply %q", resp)
	}

	code, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, "", fmt.Errorf("scpi: unparseable error code in %q: %w", resp, err)
	}

	msg := strings.Trim(strings.TrimSpace(parts[1]), `"`)

	return code, msg, nil
}
