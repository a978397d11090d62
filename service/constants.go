package service

const (
	MaxVehicleValue = 1_000_000_000.0
	MaxInterestRate = 1000.0 // annual percentage
	MaxTermMonths   = 600
	MinTermMonths   = 1
)
