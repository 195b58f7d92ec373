package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/RedeViva/api-portal/internal/admin"
	"github.com/RedeViva/api-portal/internal/arvore"
	"github.com/RedeViva/api-portal/internal/auth"
	"github.com/RedeViva/api-portal/internal/consultor"
	"github.com/RedeViva/api-portal/internal/notificacao"
	"github.com/RedeViva/api-portal/internal/ranking"
	"github.com/RedeViva/api-portal/internal/utils/db"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("sem .env, seguindo com o ambiente do processo")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("erro ao iniciar logger:", err)
	}
	defer logger.Sync()

	database, err := db.GetDB()
	if err != nil {
		logger.Fatal("erro ao conectar no banco", zap.Error(err))
	}

	// AutoMigrate para todos os modelos
	if err := database.AutoMigrate(
		&consultor.Consultor{},
		&admin.CodigoBreakGlass{},
		&admin.RegistroAuditoria{},
	); err != nil {
		logger.Fatal("erro no AutoMigrate", zap.Error(err))
	}

	validador, err := auth.NovoValidadorJWKS(
		os.Getenv("IDP_JWKS_URL"),
		os.Getenv("IDP_ISSUER"),
		os.Getenv("IDP_AUDIENCE"),
	)
	if err != nil {
		logger.Fatal("erro ao carregar JWKS do provedor de identidade", zap.Error(err))
	}

	repo := consultor.NewRepository()
	resolver := &auth.Resolver{DB: database, Repo: repo, Validador: validador, Logger: logger}

	profundidade := envInt("ARVORE_PROFUNDIDADE_MAX", arvore.ProfundidadeMaxPadrao)
	ttlBreakGlass := time.Duration(envInt("BREAKGLASS_TTL_MINUTOS", 15)) * time.Minute
	notificador := notificacao.NewNotificador(os.Getenv("WEBHOOK_NOTIFICACAO_URL"), logger)

	// Handlers
	consultorHandler := consultor.NewHandler(database, notificador, profundidade)
	authHandler := auth.NewHandler(resolver)
	arvoreHandler := arvore.NewHandler(arvore.NovoConstrutor(database, repo, profundidade, logger))
	rankingHandler := ranking.NewHandler(ranking.NovoServico(database, repo))
	adminHandler := admin.NewHandler(database, repo, logger, ttlBreakGlass, profundidade)

	// Router
	r := mux.NewRouter()
	r.Use(auth.MiddlewarePrazo(30 * time.Second))

	// Rotas que resolvem a credencial por conta própria (o mapeamento
	// de erro difere do middleware: sem perfil é 404 em /auth/me)
	r.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	r.HandleFunc("/auth/validar-papel", authHandler.ValidarPapel).Methods("POST")
	r.HandleFunc("/auth/guarda", authHandler.Guarda).Methods("GET")

	// Cadastro: identidade válida no provedor, perfil ainda inexistente
	cadastro := r.NewRoute().Subrouter()
	cadastro.Use(auth.MiddlewareCadastro(resolver))
	cadastro.HandleFunc("/consultants", consultorHandler.CriarConsultor).Methods("POST")

	// Rotas autenticadas
	autenticado := r.NewRoute().Subrouter()
	autenticado.Use(auth.MiddlewareAutenticacao(resolver))

	somenteAdmin := autenticado.NewRoute().Subrouter()
	somenteAdmin.Use(auth.RequirePapel(consultor.PapelAdmin))
	somenteAdmin.HandleFunc("/consultants/all", consultorHandler.ListarConsultores).Methods("GET")
	somenteAdmin.HandleFunc("/consultants/tree/{id}", arvoreHandler.BuscarArvore).Methods("GET")
	somenteAdmin.HandleFunc("/consultants/{id}/papel", consultorHandler.AtualizarPapel).Methods("PUT")
	somenteAdmin.HandleFunc("/consultants/{id}", consultorHandler.Desativar).Methods("DELETE")
	somenteAdmin.HandleFunc("/admin/breakglass/codigos", adminHandler.EmitirCodigo).Methods("POST")
	somenteAdmin.HandleFunc("/admin/breakglass/executar", adminHandler.Executar).Methods("POST")
	somenteAdmin.HandleFunc("/admin/auditoria", adminHandler.ListarAuditoria).Methods("GET")

	// Ranking: líderes e acima (admin herda leader)
	lideranca := autenticado.NewRoute().Subrouter()
	lideranca.Use(auth.RequirePapel(consultor.PapelLeader))
	lideranca.HandleFunc("/ranking/top", rankingHandler.Top).Methods("GET")

	autenticado.HandleFunc("/consultants/{id}/resumo", consultorHandler.ObterResumo).Methods("GET")
	autenticado.HandleFunc("/consultants/{id}", consultorHandler.BuscarPorID).Methods("GET")
	autenticado.HandleFunc("/consultants/{id}", consultorHandler.AtualizarPerfil).Methods("PUT")

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}).Handler(r)

	porta := os.Getenv("PORT")
	if porta == "" {
		porta = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + porta,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Inicia servidor
	fmt.Println("Servidor rodando em http://localhost:" + porta)
	log.Fatal(srv.ListenAndServe())
}

func envInt(nome string, padrao int) int {
	v := os.Getenv(nome)
	if v == "" {
		return padrao
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return padrao
	}
	return n
}
