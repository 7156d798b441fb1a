package domain

// Brands and cities offered as filter and form choices.
var Brands = []string{
	"Chevrolet", "Daewoo", "Kia", "Hyundai", "Toyota", "Lada", "BYD",
	"Mercedes-Benz", "BMW", "Nissan", "Volkswagen", "Lexus", "Chery", "Haval", "Boshqa",
}

var Cities = []string{
	"Toshkent", "Samarqand", "Buxoro", "Andijon", "Farg'ona", "Namangan", "Qarshi",
	"Nukus", "Xiva", "Urganch", "Jizzax", "Navoiy", "Termiz", "Guliston",
}

const firstSelectableYear = 1990

// Years lists selectable model years, newest first, up to current.
func Years(current int) []int {
	if current < firstSelectableYear {
		return nil
	}
	out := make([]int, 0, current-firstSelectableYear+1)
	for y := current; y >= firstSelectableYear; y-- {
		out = append(out, y)
	}
	return out
}
