package services

import "github.com/shopspring/decimal"

// DefaultMenu is the restaurant's printed menu. Items marked unverified carry values copied
// as-is from the menu card that staff still need to confirm (Mineral Water is listed as
// half 20 / full 10).
func DefaultMenu() Dataset {
	return Dataset{
		{
			Category:     "Special Appetizers Veg",
			DisplayOrder: 1,
			Items: []SeedItem{
				regular("Cheese Garlic Paneer", true, 179),
				regular("Burnt Garlic Cheese Paneer", true, 189),
				regular("Paneer Satay", true, 199),
				regular("Paneer Banjara Kabab", true, 230),
				regular("Paneer Angara Tikka", true, 230),
				regular("Paneer Pahadi Tikka", true, 230),
			},
		},
		{
			Category:     "Special Appetizers Non-Veg",
			DisplayOrder: 2,
			Items: []SeedItem{
				regular("Cheese Garlic Chicken (Bone/BL)", false, 199),
				regular("Chicken Banjara Kabab", false, 220),
				regular("Tandoori Lollipop (8 pcs)", false, 220),
				regular("Chicken Angara Kabab", false, 249),
				regular("Chicken Pahadi Tikka", false, 239),
				regular("Chicken Reshmi Kabab", false, 269),
				regular("Burnt Garlic Cheese Chicken", false, 229),
				regular("Chicken Satay", false, 199),
				regular("Mohini Fish Tikka", false, 259),
				unverified(regular("Cheese Girlk Prawn", false, 249)),
				regular("Spicy Chicken Pepper Wings", false, 199),
			},
		},
		{
			Category:     "Special Paneer Main Course",
			DisplayOrder: 3,
			Items: []SeedItem{
				halfFull("Paneer Majedar", true, 179, 249),
				halfFull("Paneer Lababdar", true, 179, 249),
				halfFull("Paneer Chatpata", true, 179, 249),
				halfFull("Pind Da Paneer", true, 179, 249),
				halfFull("Paneer Patiyala", true, 179, 249),
				halfFull("Paneer Chingari", true, 179, 249),
				halfFull("Paneer Tufani", true, 179, 249),
				halfFull("Dum Handi Paneer", true, 189, 259),
				halfFull("Lasooni Paneer Masala", true, 189, 259),
				halfFull("Paneer Lahore", true, 189, 259),
				halfFull("Paneer Malai Masala", true, 199, 259),
				halfFull("Paneer Hariyali Masala", true, 179, 259),
				unverified(halfFull("Paneer Maharaja", true, 179, 239)),
			},
		},
		{
			Category:     "Special Chicken Main Course",
			DisplayOrder: 4,
			Items: []SeedItem{
				halfFull("Chicken Lababdar", false, 179, 249),
				halfFull("Chicken Majeedar", false, 179, 249),
				halfFull("Chicken Rara", false, 189, 269),
				halfFull("Chicken Keema", false, 179, 249),
				halfFull("Chicken Chatpata", false, 179, 249),
				halfFull("Murgh Musallam", false, 249, 429),
				halfFull("Chicken Lazeez", false, 179, 249),
				halfFull("Pind Da Chicken", false, 199, 269),
				halfFull("Chicken Chingari", false, 199, 269),
				halfFull("Chicken Tufani", false, 199, 269),
				halfFull("Chicken Leg Piece Masala", false, 180, 240),
				halfFull("Chicken Kalmi Kosha", false, 180, 249),
				halfFull("Chicken Afghani", false, 170, 249),
			},
		},
		{
			Category:     "Special Veg Main Course",
			DisplayOrder: 5,
			Items: []SeedItem{
				halfFull("Matka Sabzi", true, 159, 199),
				halfFull("Veg Chilli Milli", true, 149, 199),
				halfFull("Veg Lajawab", true, 149, 199),
				halfFull("Rajasthani Sabzi", true, 149, 199),
				halfFull("Veg Patiyala", true, 149, 199),
				halfFull("Veg Tufani", true, 149, 199),
				halfFull("Veg Majedaar", true, 149, 199),
				halfFull("Veg Hariyali Masala", true, 149, 199),
			},
		},
		{
			Category:     "Special Rice",
			DisplayOrder: 6,
			Items: []SeedItem{
				regular("Veg Yakni Pulao", true, 149),
				regular("Nasi Goreng Chicken Fried Rice", false, 189),
				regular("Chicken Yakhni Pulao", false, 189),
				regular("Mutton Yakhni Pulao", false, 250),
				unverified(regular("Domli Masala Papad", true, 149)),
			},
		},
		{
			Category:     "Pasta",
			DisplayOrder: 7,
			Items: []SeedItem{
				regular("Veg Penne Arrabita", true, 180),
				regular("Veg Penne with Cream Sauce", true, 180),
				regular("Chicken Penne Arrabita", false, 220),
				regular("Chicken Penne with Cream Sauce", false, 220),
			},
		},
		{
			Category:     "Snacks",
			DisplayOrder: 8,
			Items: []SeedItem{
				regular("Puri Sabbi (5 pcs)", true, 110),
				regular("Plain Kachori (5 pcs)", true, 110),
				regular("Chola Bhatura (5 pcs)", true, 130),
				regular("Extra Pav", true, 15),
				regular("Per Pc Puri", true, 20),
			},
		},
		{
			Category:     "Rolls",
			DisplayOrder: 9,
			Items: []SeedItem{
				regular("Veg Roll", true, 60),
				regular("Veg Cheese Roll", true, 70),
				regular("Paneer Roll", true, 80),
				regular("Paneer Cheese Roll", true, 90),
				regular("Paneer Tikka Roll", true, 100),
				regular("Egg Roll", false, 70),
				regular("Egg Cheese Roll", false, 80),
				regular("Double Egg Roll", false, 90),
				regular("Double Egg Cheese Roll", false, 100),
				regular("Chicken Roll", false, 90),
				regular("Chicken Egg Roll", false, 100),
				regular("Chicken Cheese Roll", false, 110),
				regular("Chicken Tikka Roll", false, 110),
				regular("Chicken Tikka Cheese Roll", false, 120),
				regular("Chicken Tikka Egg Cheese Roll", false, 130),
			},
		},
		{
			Category:     "Sizzler",
			DisplayOrder: 10,
			Items: []SeedItem{
				regular("Veg Grill Sizzler", true, 210),
				regular("Veg Cheese Sizzler", true, 250),
				regular("Paneer Sizzler", true, 250),
				regular("Chicken Grill Sizzler", false, 250),
				regular("Chicken Cheese Grill Sizzler", false, 250),
			},
		},
		{
			Category:     "Maggie",
			DisplayOrder: 11,
			Items: []SeedItem{
				regular("Plain Maggie", true, 60),
				regular("Veg Maggie", true, 70),
				regular("Cheese Maggie", true, 80),
				regular("Egg Maggie", false, 100),
				regular("Double Egg Cheese Maggie", false, 120),
				regular("Chicken Maggie", false, 120),
				regular("Chicken Cheese Maggie", false, 130),
			},
		},
		{
			Category:     "Beverages | Desserts | Juice",
			DisplayOrder: 12,
			Items: []SeedItem{
				regular("Butter Milk", true, 40),
				regular("Lassi", true, 50),
				regular("Nimboo Pani", true, 30),
				regular("Masala Cold Drinks", true, 40),
				regular("Virgin Mojito Lemon", true, 70),
				unverified(halfFull("Mineral Water", true, 20, 10)),
				regular("Cold Drinks", true, 20),
				regular("Gulab Jamun (1 pc)", true, 20),
				regular("Lime Soda", true, 50),
				regular("Watermelon Juice", true, 89),
				regular("Mosambi Juice", true, 69),
				regular("Apple Juice", true, 99),
				regular("Pineapple Juice", true, 69),
				regular("Mango Juice", true, 99),
				regular("Pomegranate Juice", true, 99),
				regular("Chocolate Milk Shake", true, 99),
				unverified(regular("Chikku Milk Shake", true, 119)),
			},
		},
	}
}

func rupees(n int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(n))
}

func regular(name string, veg bool, price int64) SeedItem {
	return SeedItem{Name: name, Veg: veg, PriceRegular: rupees(price)}
}

func halfFull(name string, veg bool, half, full int64) SeedItem {
	return SeedItem{Name: name, Veg: veg, PriceHalf: rupees(half), PriceFull: rupees(full)}
}

func unverified(it SeedItem) SeedItem {
	it.NeedsVerification = true
	return it
}
