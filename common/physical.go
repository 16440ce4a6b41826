package common

// All units are metric:
// - Speed is in m/s
// - Distance is in meters
// - Acceleration is in m/s^2
// - Time is in seconds

const SpeedOfWalkingMin = 0.7  // or 2.5 km/h
const SpeedOfWalkingMean = 1.2 // or 4.3 km/h
const SpeedOfRunningMin = 2.2  // or 7.9 km/h
const SpeedOfRunningMean = 3.35
const SpeedOfVehicleMin = 6.0 // or 21.6 km/h
const SpeedOfCityDriving = 13.9
const SpeedOfHighwayDriving = 32

// StationarySpeedMax is the fastest a device can report and still plausibly
// be sitting on a table (GPS drift included).
const StationarySpeedMax = 0.3

const GravityStandard = 9.80665

// Mean stride length and walking energy cost used by the session aggregator.
const StrideMeters = 0.8
const CaloriesPerKm = 60.0
