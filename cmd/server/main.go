package main

import (
	"flag"
	"log"

	"github.com/ButyrinIA/forum/internal/config"
	"github.com/ButyrinIA/forum/internal/localstore"
	"github.com/ButyrinIA/forum/internal/server"
	"github.com/ButyrinIA/forum/internal/storage"
	"github.com/ButyrinIA/forum/internal/storage/memory"
	"github.com/ButyrinIA/forum/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	storageType := flag.String("storage", "memory", "тип хранилища контента: memory или postgres")
	localType := flag.String("local", "memory", "тип локального хранилища: memory или redis")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	var store storage.Storage
	switch *storageType {
	case "postgres":
		log.Println("Инициализация хранилища PostgreSQL")
		store, err = postgres.New(cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("Не удалось инициализировать PostgreSQL: %v", err)
		}
	case "memory":
		log.Println("Инициализация хранилища Memory")
		store = memory.New()
	default:
		log.Fatalf("Неизвестный тип хранилища: %s", *storageType)
	}
	defer store.Close()

	var kv localstore.KV
	switch *localType {
	case "redis":
		log.Println("Инициализация локального хранилища Redis")
		kv = localstore.NewRedisKV(cfg)
	case "memory":
		log.Println("Инициализация локального хранилища Memory")
		kv = localstore.NewMemoryKV()
	default:
		log.Fatalf("Неизвестный тип локального хранилища: %s", *localType)
	}

	srv := server.New(cfg, store, kv)
	log.Println("Запуск сервера")
	if err := srv.Run(); err != nil {
		log.Fatalf("Не удалось запустить сервер: %v", err)
	}
}
