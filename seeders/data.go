package seeders

type partSeed struct {
	NameRu string
	NameHe string
	NameEn string
}

type categorySeed struct {
	Icon   string
	NameRu string
	NameHe string
	NameEn string
	Parts  []partSeed
}

// Базовый каталог мастерской: категории бота с переводами.
var catalogData = []categorySeed{
	{
		Icon: "🔧", NameRu: "Тормоза", NameHe: "בלמים", NameEn: "Brakes",
		Parts: []partSeed{
			{"Передние колодки", "רפידות קדמיות", "Front pads"},
			{"Задние колодки", "רפידות אחוריות", "Rear pads"},
			{"Диски передние", "דיסקים קדמיים", "Front discs"},
			{"Диски задние", "דיסקים אחוריים", "Rear discs"},
			{"Тормозная жидкость", "נוזל בלמים", "Brake fluid"},
			{"Суппорт передний", "קליפר קדמי", "Front caliper"},
			{"Суппорт задний", "קליפר אחורי", "Rear caliper"},
		},
	},
	{
		Icon: "⚙️", NameRu: "Двигатель", NameHe: "מנוע", NameEn: "Engine",
		Parts: []partSeed{
			{"Масло моторное", "שמן מנוע", "Engine oil"},
			{"Масляный фильтр", "מסנן שמן", "Oil filter"},
			{"Воздушный фильтр", "מסנן אוויר", "Air filter"},
			{"Свечи зажигания", "מצתים", "Spark plugs"},
			{"Ремень ГРМ", "רצועת תזמון", "Timing belt"},
			{"Помпа", "משאבת מים", "Water pump"},
			{"Термостат", "תרמוסטט", "Thermostat"},
		},
	},
	{
		Icon: "🔩", NameRu: "Подвеска", NameHe: "מתלים", NameEn: "Suspension",
		Parts: []partSeed{
			{"Амортизаторы передние", "בולמי זעזועים קדמיים", "Front shock absorbers"},
			{"Амортизаторы задние", "בולמי זעזועים אחוריים", "Rear shock absorbers"},
			{"Стойки", "עמודי תמיכה", "Struts"},
			{"Рычаги передние", "זרועות קדמיות", "Front arms"},
			{"Сайлентблоки", "סיילנטבלוקים", "Silent blocks"},
			{"Шаровые опоры", "פיקות כדוריות", "Ball joints"},
			{"Стойки стабилизатора", "מוטות יציבות", "Stabilizer bars"},
		},
	},
	{
		Icon: "⚡", NameRu: "Электрика", NameHe: "חשמל", NameEn: "Electrics",
		Parts: []partSeed{
			{"Аккумулятор", "מצבר", "Battery"},
			{"Генератор", "גנרטור", "Alternator"},
			{"Стартер", "מתנע", "Starter"},
			{"Проводка", "חיווט", "Wiring"},
			{"Предохранители", "נתיכים", "Fuses"},
			{"Датчики", "חיישנים", "Sensors"},
			{"Лампы", "נורות", "Bulbs"},
		},
	},
	{
		Icon: "💧", NameRu: "Расходники", NameHe: "מתכלים", NameEn: "Consumables",
		Parts: []partSeed{
			{"Фильтр салона", "מסנן תא נוסעים", "Cabin filter"},
			{"Щетки стеклоочистителя", "מגבי שמשה", "Wiper blades"},
			{"Антифриз", "נוזל קירור", "Antifreeze"},
			{"Омывающая жидкость", "מי שמשה", "Washer fluid"},
			{"Тормозная жидкость", "נוזל בלמים", "Brake fluid"},
			{"Масло трансмиссионное", "שמן תיבת הילוכים", "Transmission oil"},
		},
	},
}

type mechanicSeed struct {
	Name      string
	Email     string
	Phone     string
	Specialty string
}

// Тестовые механики, пароль задаётся флагом команды.
var mechanicsData = []mechanicSeed{
	{Name: "Иван Петров", Email: "ivan@felix.com", Phone: "+972501234567", Specialty: "Двигатель"},
	{Name: "Алексей Сидоров", Email: "alex@felix.com", Phone: "+972507654321", Specialty: "Ходовая"},
	{Name: "Михаил Иванов", Email: "mikhail@felix.com", Phone: "+972509876543", Specialty: "Электрика"},
	{Name: "Дмитрий Козлов", Email: "dmitry@felix.com", Phone: "+972505551234", Specialty: "Диагностика"},
}
