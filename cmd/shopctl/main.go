// Command shopctl — администрирование каталога магазина костюмов из командной строки:
// чтение и изменение CSV-таблиц напрямую, запросы к gRPC API и просмотр событий изменений.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCommand(newEnvironment()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
