package main

import (
	"log"

	"courseapi/config"
	authControllers "courseapi/controllers/auth"
	courseControllers "courseapi/controllers/course"
	"courseapi/database"
	authRoutes "courseapi/routers/authRoutes"
	courseRoutes "courseapi/routers/courseRoutes"
	"courseapi/services/enrollment"
	"courseapi/services/notification"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	database.ConnectMongo()

	// Wire workflow services
	mailer := notification.NewSendGridMailer(config.AppConfig.SendGridKey, config.AppConfig.EmailSender)
	notifySvc := notification.NewService(database.Database.Db, mailer)
	enrollSvc := enrollment.NewService(database.Mongo.Courses, database.Mongo.Enrollments, notifySvc)

	authControllers.Init(notifySvc)
	courseControllers.Init(enrollSvc, notifySvc)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
