package transport

// VehicleType is the kind of truck assigned to a lot.
type VehicleType string

// Vehicle types offered by the transport subsystem.
const (
	VehicleThreeQuarter VehicleType = "3/4"
	VehicleToco         VehicleType = "Toco"
	VehicleCarreta      VehicleType = "Carreta"
	VehicleTruck        VehicleType = "Truck"
	VehicleRodotrem     VehicleType = "Rodotrem"
	VehicleContainer    VehicleType = "Container"
	VehicleUtilitario   VehicleType = "Utilitario"

	// VehicleNotInformed is stored when the transport subsystem left the type blank.
	VehicleNotInformed VehicleType = "Não informado"
)

// VehicleTypes lists the known, informed vehicle types.
func VehicleTypes() []VehicleType {
	return []VehicleType{
		VehicleThreeQuarter,
		VehicleToco,
		VehicleCarreta,
		VehicleTruck,
		VehicleRodotrem,
		VehicleContainer,
		VehicleUtilitario,
	}
}

// normalizeVehicle maps an empty type to VehicleNotInformed. Unknown non-empty values are
// kept: the transport subsystem owns the list.
func normalizeVehicle(v VehicleType) VehicleType {
	if v == "" {
		return VehicleNotInformed
	}
	return v
}
