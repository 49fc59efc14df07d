package main

import (
	"fmt"
	"log"
	"net/http"

	"financeApp/config"
	"financeApp/controllers"
	"financeApp/database"
	"financeApp/middleware"
	"financeApp/services"
	"financeApp/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
)

func initReminderScheduler(db *database.Database, emailService *services.EmailService) {
	// Создаем планировщик напоминаний о платежах
	scheduler := services.NewReminderScheduler(db.DB, emailService)

	// Запускаем планировщик
	scheduler.Start()
	log.Println("Планировщик напоминаний запущен")
}

// newOpsRouter собирает служебный роутер с health-check и метриками
func newOpsRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	ops := gin.New()
	ops.Use(middleware.Recovery())
	ops.Use(middleware.Logger())
	ops.Use(middleware.RateLimit())

	ops.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ops.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetMetrics().GetMetricsSnapshot())
	})

	return ops
}

// runOpsServer запускает служебный роутер на отдельном порту
func runOpsServer(cfg *config.Config) {
	ops := newOpsRouter()

	addr := fmt.Sprintf(":%d", cfg.Server.OpsPort)
	log.Printf("Служебный сервер запущен на порту %s", addr)
	if err := ops.Run(addr); err != nil {
		log.Fatalf("Ошибка запуска служебного сервера: %v", err)
	}
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем подключение к базе данных
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	// Инициализируем кеш сводок
	var cache *database.Cache
	if cfg.Redis.Enabled {
		cache = database.NewCache(cfg)
		defer cache.Close()
	}

	// Инициализируем сервис email
	emailService := services.NewEmailService(cfg)

	// Запускаем планировщик напоминаний
	initReminderScheduler(db, emailService)

	// Создаем роутер
	router := mux.NewRouter()

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(db, cfg)
	accountController := controllers.NewAccountController(db)
	debtController := controllers.NewDebtController(db, cache, cfg, emailService)

	// Публичные маршруты для аутентификации
	router.HandleFunc("/api/auth/signUp", authController.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/signIn", authController.SignIn).Methods("POST")

	// Защищенные маршруты
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.LoggingMiddleware)

	// Маршруты для работы со счетами
	protected.HandleFunc("/accounts", accountController.CreateAccount).Methods("POST")
	protected.HandleFunc("/accounts", accountController.GetAccounts).Methods("GET")
	protected.HandleFunc("/accounts/{id}", accountController.GetAccount).Methods("GET")
	protected.HandleFunc("/accounts/{id}/deposit", accountController.Deposit).Methods("POST")
	protected.HandleFunc("/accounts/{id}/withdraw", accountController.Withdraw).Methods("POST")

	// Маршруты для работы с долгами.
	// Сводка регистрируется раньше маршрута с {id}
	protected.HandleFunc("/debts/summary", debtController.GetSummary).Methods("GET")
	protected.HandleFunc("/debts", debtController.CreateDebt).Methods("POST")
	protected.HandleFunc("/debts", debtController.GetDebts).Methods("GET")
	protected.HandleFunc("/debts/{id}", debtController.GetDebt).Methods("GET")
	protected.HandleFunc("/debts/{id}", debtController.UpdateDebt).Methods("PUT")
	protected.HandleFunc("/debts/{id}", debtController.DeleteDebt).Methods("DELETE")
	protected.HandleFunc("/debts/{id}/schedule", debtController.GetSchedule).Methods("GET")
	protected.HandleFunc("/debts/{id}/savings", debtController.GetSavings).Methods("GET")
	protected.HandleFunc("/debts/{id}/pay", debtController.PayDebt).Methods("POST")

	// Служебный роутер на отдельном порту
	go runOpsServer(cfg)

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на порту %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
