package seeders

var assetTypesData = []struct {
	Name        string
	Description string
}{
	{Name: "Ноутбук", Description: "Переносные компьютеры"},
	{Name: "Системный блок", Description: "Стационарные рабочие станции"},
	{Name: "Монитор", Description: ""},
	{Name: "Принтер / МФУ", Description: "Печатная и копировальная техника"},
	{Name: "Сервер", Description: "Серверное и сетевое оборудование"},
	{Name: "Телефон", Description: "Мобильные и IP-телефоны"},
	{Name: "Мебель", Description: "Столы, стулья, шкафы"},
	{Name: "Транспорт", Description: "Служебные автомобили"},
}
