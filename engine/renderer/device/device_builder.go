package device

import "go.uber.org/zap"

// DeviceBuilderOption is a functional option for configuring a Device via NewDevice.
type DeviceBuilderOption func(*device)

// WithLogger is an option builder that sets the logger used for cache events.
//
// Parameters:
//   - logger: the logger, nil keeps the no-op logger
//
// Returns:
//   - DeviceBuilderOption: a function that applies the logger option to a device
func WithLogger(logger *zap.Logger) DeviceBuilderOption {
	return func(d *device) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithGrowthFactor is an option builder that sets the instance buffer growth multiplier.
// Values below 1 are clamped to 1.
//
// Parameters:
//   - factor: the growth factor
//
// Returns:
//   - DeviceBuilderOption: a function that applies the growth factor option to a device
func WithGrowthFactor(factor float32) DeviceBuilderOption {
	return func(d *device) {
		d.growthFactor = factor
	}
}
