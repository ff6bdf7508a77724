package expiry

import "time"

// monthlyExpiries is the published monthly F&O expiry schedule, one entry per
// contract month starting January 2018. Expiry normally falls on the last
// Thursday of the month; entries that deviate reflect exchange holidays.
var monthlyExpiries = []Entry{
	{Day: 25, Month: time.January, Year: 2018},
	{Day: 22, Month: time.February, Year: 2018},
	{Day: 28, Month: time.March, Year: 2018},
	{Day: 26, Month: time.April, Year: 2018},
	{Day: 31, Month: time.May, Year: 2018},
	{Day: 28, Month: time.June, Year: 2018},
	{Day: 26, Month: time.July, Year: 2018},
	{Day: 30, Month: time.August, Year: 2018},
	{Day: 27, Month: time.September, Year: 2018},
	{Day: 25, Month: time.October, Year: 2018},
	{Day: 29, Month: time.November, Year: 2018},
	{Day: 27, Month: time.December, Year: 2018},
	{Day: 31, Month: time.January, Year: 2019},
	{Day: 28, Month: time.February, Year: 2019},
	{Day: 28, Month: time.March, Year: 2019},
	{Day: 25, Month: time.April, Year: 2019},
	{Day: 30, Month: time.May, Year: 2019},
	{Day: 27, Month: time.June, Year: 2019},
	{Day: 25, Month: time.July, Year: 2019},
	{Day: 29, Month: time.August, Year: 2019},
	{Day: 26, Month: time.September, Year: 2019},
	{Day: 31, Month: time.October, Year: 2019},
	{Day: 28, Month: time.November, Year: 2019},
	{Day: 26, Month: time.December, Year: 2019},
	{Day: 30, Month: time.January, Year: 2020},
	{Day: 27, Month: time.February, Year: 2020},
	{Day: 26, Month: time.March, Year: 2020},
	{Day: 30, Month: time.April, Year: 2020},
	{Day: 28, Month: time.May, Year: 2020},
	{Day: 25, Month: time.June, Year: 2020},
	{Day: 30, Month: time.July, Year: 2020},
	{Day: 27, Month: time.August, Year: 2020},
	{Day: 24, Month: time.September, Year: 2020},
	{Day: 29, Month: time.October, Year: 2020},
	{Day: 26, Month: time.November, Year: 2020},
	{Day: 31, Month: time.December, Year: 2020},
	{Day: 28, Month: time.January, Year: 2021},
	{Day: 25, Month: time.February, Year: 2021},
	{Day: 25, Month: time.March, Year: 2021},
	{Day: 29, Month: time.April, Year: 2021},
	{Day: 27, Month: time.May, Year: 2021},
	{Day: 24, Month: time.June, Year: 2021},
	{Day: 29, Month: time.July, Year: 2021},
	{Day: 26, Month: time.August, Year: 2021},
	{Day: 30, Month: time.September, Year: 2021},
	{Day: 28, Month: time.October, Year: 2021},
	{Day: 25, Month: time.November, Year: 2021},
	{Day: 30, Month: time.December, Year: 2021},
	{Day: 27, Month: time.January, Year: 2022},
	{Day: 24, Month: time.February, Year: 2022},
	{Day: 31, Month: time.March, Year: 2022},
	{Day: 28, Month: time.April, Year: 2022},
	{Day: 26, Month: time.May, Year: 2022},
	{Day: 30, Month: time.June, Year: 2022},
	{Day: 28, Month: time.July, Year: 2022},
	{Day: 25, Month: time.August, Year: 2022},
	{Day: 29, Month: time.September, Year: 2022},
	{Day: 27, Month: time.October, Year: 2022},
	{Day: 24, Month: time.November, Year: 2022},
	{Day: 29, Month: time.December, Year: 2022},
	{Day: 26, Month: time.January, Year: 2023},
	{Day: 23, Month: time.February, Year: 2023},
	{Day: 30, Month: time.March, Year: 2023},
	{Day: 27, Month: time.April, Year: 2023},
	{Day: 25, Month: time.May, Year: 2023},
	{Day: 29, Month: time.June, Year: 2023},
	{Day: 27, Month: time.July, Year: 2023},
	{Day: 31, Month: time.August, Year: 2023},
	{Day: 28, Month: time.September, Year: 2023},
	{Day: 26, Month: time.October, Year: 2023},
	{Day: 30, Month: time.November, Year: 2023},
	{Day: 28, Month: time.December, Year: 2023},
	{Day: 25, Month: time.January, Year: 2024},
	{Day: 29, Month: time.February, Year: 2024},
	{Day: 28, Month: time.March, Year: 2024},
	{Day: 25, Month: time.April, Year: 2024},
	{Day: 30, Month: time.May, Year: 2024},
	{Day: 27, Month: time.June, Year: 2024},
	{Day: 25, Month: time.July, Year: 2024},
	{Day: 29, Month: time.August, Year: 2024},
	{Day: 26, Month: time.September, Year: 2024},
	{Day: 31, Month: time.October, Year: 2024},
	{Day: 28, Month: time.November, Year: 2024},
	{Day: 26, Month: time.December, Year: 2024},
	{Day: 30, Month: time.January, Year: 2025},
	{Day: 27, Month: time.February, Year: 2025},
	{Day: 27, Month: time.March, Year: 2025},
	{Day: 24, Month: time.April, Year: 2025},
	{Day: 29, Month: time.May, Year: 2025},
	{Day: 26, Month: time.June, Year: 2025},
	{Day: 31, Month: time.July, Year: 2025},
	{Day: 28, Month: time.August, Year: 2025},
	{Day: 25, Month: time.September, Year: 2025},
	{Day: 30, Month: time.October, Year: 2025},
	{Day: 27, Month: time.November, Year: 2025},
	{Day: 25, Month: time.December, Year: 2025},
	{Day: 29, Month: time.January, Year: 2026},
	{Day: 26, Month: time.February, Year: 2026},
	{Day: 26, Month: time.March, Year: 2026},
	{Day: 30, Month: time.April, Year: 2026},
	{Day: 28, Month: time.May, Year: 2026},
	{Day: 25, Month: time.June, Year: 2026},
	{Day: 30, Month: time.July, Year: 2026},
	{Day: 27, Month: time.August, Year: 2026},
	{Day: 24, Month: time.September, Year: 2026},
	{Day: 29, Month: time.October, Year: 2026},
	{Day: 26, Month: time.November, Year: 2026},
	{Day: 31, Month: time.December, Year: 2026},
}
