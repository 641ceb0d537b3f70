package geo

// PopularDestinations is the curated list shown on the landing page and used
// as the candidate set for nearest-airport lookups.
var PopularDestinations = []Airport{
	{Code: "CDG", Name: "Paris Charles de Gaulle Airport", City: "Paris", Country: "France", Latitude: 49.01, Longitude: 2.55},
	{Code: "LHR", Name: "London Heathrow Airport", City: "London", Country: "United Kingdom", Latitude: 51.47, Longitude: -0.46},
	{Code: "JFK", Name: "New York John F. Kennedy International Airport", City: "New York", Country: "United States", Latitude: 40.64, Longitude: -73.78},
	{Code: "NRT", Name: "Tokyo Narita Airport", City: "Tokyo", Country: "Japan", Latitude: 35.76, Longitude: 139.78},
	{Code: "DXB", Name: "Dubai International Airport", City: "Dubai", Country: "United Arab Emirates", Latitude: 25.27, Longitude: 55.36},
	{Code: "BKK", Name: "Bangkok Suvarnabhumi Airport", City: "Bangkok", Country: "Thailand", Latitude: 13.95, Longitude: 100.78},
	{Code: "SYD", Name: "Sydney International Airport", City: "Sydney", Country: "Australia", Latitude: -33.94, Longitude: 151.18},
	{Code: "FCO", Name: "Rome Fiumicino Airport", City: "Rome", Country: "Italy", Latitude: 41.80, Longitude: 12.25},
	{Code: "BCN", Name: "Barcelona Airport", City: "Barcelona", Country: "Spain", Latitude: 41.29, Longitude: 2.16},
	{Code: "IST", Name: "Istanbul Airport", City: "Istanbul", Country: "Turkey", Latitude: 40.89, Longitude: 28.81},
	{Code: "BLR", Name: "Bangalore International Airport", City: "Bangalore", Country: "India", Latitude: 12.97, Longitude: 77.60},
	{Code: "DEL", Name: "Indira Gandhi International Airport", City: "New Delhi", Country: "India", Latitude: 28.5665, Longitude: 77.103088},
	{Code: "HDO", Name: "Handia Airport", City: "Handia (Hardoi)", Country: "India", Latitude: 17.0494, Longitude: 75.1622},
	{Code: "IDR", Name: "Devi Ahilya Bai Holkar Airport", City: "Indore", Country: "India", Latitude: 22.7218, Longitude: 75.8011},
	{Code: "BOM", Name: "Chhatrapati Shivaji Maharaj International Airport", City: "Mumbai", Country: "India", Latitude: 19.0896, Longitude: 72.865},
	{Code: "BLR", Name: "Kempegowda International Airport", City: "Bengaluru", Country: "India", Latitude: 13.1979, Longitude: 77.7063},
	{Code: "HYD", Name: "Rajiv Gandhi International Airport", City: "Hyderabad", Country: "India", Latitude: 17.2403, Longitude: 78.4294},
	{Code: "CCU", Name: "Netaji Subhas Chandra Bose International Airport", City: "Kolkata", Country: "India", Latitude: 22.6547, Longitude: 88.445},
	{Code: "MAA", Name: "Chennai International Airport", City: "Chennai", Country: "India", Latitude: 12.9944, Longitude: 80.1693},
	{Code: "PAT", Name: "Jay Prakash Narayan International Airport", City: "Patna", Country: "India", Latitude: 25.5913, Longitude: 85.088},
	{Code: "DGH", Name: "Deoghar Airport", City: "Deoghar", Country: "India", Latitude: 24.4763, Longitude: 86.6997},
	{Code: "PNQ", Name: "Pune International Airport", City: "Pune", Country: "India", Latitude: 18.5821, Longitude: 73.9197},
	{Code: "GOI", Name: "Goa International Airport (Dabolim)", City: "Goa", Country: "India", Latitude: 15.3808, Longitude: 73.8314},
	{Code: "GAU", Name: "Lokpriya Gopinath Bordoloi International Airport", City: "Guwahati", Country: "India", Latitude: 26.1061, Longitude: 91.5889},
	{Code: "BBI", Name: "Biju Patnaik International Airport", City: "Bhubaneswar", Country: "India", Latitude: 20.2444, Longitude: 85.8189},
	{Code: "IXB", Name: "Bagdogra International Airport", City: "Bagdogra", Country: "India", Latitude: 26.6812, Longitude: 88.3286},
	{Code: "IXZ", Name: "Veer Savarkar International Airport", City: "Port Blair", Country: "India", Latitude: 11.6412, Longitude: 92.7297},
	{Code: "LKO", Name: "Chaudhary Charan Singh International Airport", City: "Lucknow", Country: "India", Latitude: 26.7606, Longitude: 80.8893},
	{Code: "JAI", Name: "Jaipur International Airport", City: "Jaipur", Country: "India", Latitude: 26.8242, Longitude: 75.8122},
	{Code: "IXA", Name: "Maharaja Bir Bikram Airport", City: "Agartala", Country: "India", Latitude: 23.886, Longitude: 91.2404},
}
