package main

import "github.com/iwtcode/tankRtu/internal/app"

func main() {
	// Создаем и запускаем новый экземпляр приложения fx
	app.New().Run()
}
