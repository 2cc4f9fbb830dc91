// Package lifecycle holds the component lifecycle vocabulary and the
// reconciliation rules that decide whether an inbound start/end event is
// accepted, rejected, or treated as an out-of-order correction.
package lifecycle

import "fmt"

// ComponentType is a contract component that can be started and ended.
type ComponentType string

const (
	ComponentEnergySupply         ComponentType = "energy_supply"
	ComponentBatteryOptimization  ComponentType = "battery_optimization"
	ComponentHeatpumpOptimization ComponentType = "heatpump_optimization"
)

// ComponentTypes lists every known component type.
var ComponentTypes = []ComponentType{
	ComponentEnergySupply,
	ComponentBatteryOptimization,
	ComponentHeatpumpOptimization,
}

// IsValidComponentType reports whether value is a known component type.
func IsValidComponentType(value string) bool {
	for _, componentType := range ComponentTypes {
		if string(componentType) == value {
			return true
		}
	}
	return false
}

// EventAction is the half of a lifecycle window an event addresses.
type EventAction string

const (
	ActionStart EventAction = "start"
	ActionEnd   EventAction = "end"
)

// EventType is a raw inbound event type literal.
type EventType string

const (
	EventSupplyEnergyStart         EventType = "supply_energy_start"
	EventSupplyEnergyEnd           EventType = "supply_energy_end"
	EventBatteryOptimizationStart  EventType = "battery_optimization_start"
	EventBatteryOptimizationEnd    EventType = "battery_optimization_end"
	EventHeatpumpOptimizationStart EventType = "heatpump_optimization_start"
	EventHeatpumpOptimizationEnd   EventType = "heatpump_optimization_end"
)

// ErrUnsupportedEventType is returned when a raw event type does not resolve
// to a (component, action) pair.
type ErrUnsupportedEventType struct {
	RawType string
}

func (e *ErrUnsupportedEventType) Error() string {
	return fmt.Sprintf("unsupported event type: %s", e.RawType)
}

// ResolveComponentAction maps a raw event type to its component and action.
func ResolveComponentAction(rawType string) (ComponentType, EventAction, error) {
	switch EventType(rawType) {
	case EventSupplyEnergyStart:
		return ComponentEnergySupply, ActionStart, nil
	case EventSupplyEnergyEnd:
		return ComponentEnergySupply, ActionEnd, nil
	case EventBatteryOptimizationStart:
		return ComponentBatteryOptimization, ActionStart, nil
	case EventBatteryOptimizationEnd:
		return ComponentBatteryOptimization, ActionEnd, nil
	case EventHeatpumpOptimizationStart:
		return ComponentHeatpumpOptimization, ActionStart, nil
	case EventHeatpumpOptimizationEnd:
		return ComponentHeatpumpOptimization, ActionEnd, nil
	default:
		return "", "", &ErrUnsupportedEventType{RawType: rawType}
	}
}
