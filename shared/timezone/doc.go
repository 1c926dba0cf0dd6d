// Package timezone pins the application to a single IANA timezone,
// configured through the APP_TIMEZONE environment variable and loaded
// when the package is imported.
//
// timezone.Now returns the current time in that zone, ToAppTime converts
// an arbitrary time into it, and Format and Parse wrap their time package
// equivalents with the zone applied. Reservation timestamps are written
// in this zone so date comparisons line up with the hotel's local
// calendar day.
package timezone
