package usecase

// StationDirectory lists pickup stations per county.
type StationDirectory struct {
	counties []string
	stations map[string][]string
}

// NewStationDirectory returns the directory of counties served by the shop.
func NewStationDirectory() *StationDirectory {
	d := &StationDirectory{stations: make(map[string][]string)}
	d.add("Nairobi", "Westgate Mall", "Garden City Mall", "The Hub Karen", "Two Rivers Mall")
	d.add("Mombasa", "Nyali Centre", "City Mall", "Mtwapa", "Likoni")
	d.add("Kisumu", "West End Mall", "Kisumu Mega Plaza", "Kisumu CBD")
	d.add("Nakuru", "Westside Mall", "Nakuru Town", "Lanet")
	return d
}

func (d *StationDirectory) add(county string, stations ...string) {
	d.counties = append(d.counties, county)
	d.stations[county] = stations
}

// Counties returns served counties in display order.
func (d *StationDirectory) Counties() []string {
	out := make([]string, len(d.counties))
	copy(out, d.counties)
	return out
}

// Stations returns the pickup stations of county, or an empty list for an unknown county.
func (d *StationDirectory) Stations(county string) []string {
	stations := d.stations[county]
	out := make([]string, len(stations))
	copy(out, stations)
	return out
}
