// Seed tool: imports the legacy exports.
//   - empresas loads the company export into MongoDB
//   - bairros loads neighbourhoods and collection sectors into Postgres
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"aquiguaira/bairros"
	"aquiguaira/companies"
	"aquiguaira/db"
	"aquiguaira/globals"
	"aquiguaira/pg"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Import legacy data into the Aqui Guaíra stores",
		SilenceUsage:  true,
	}
	root.PersistentFlags().Duration("timeout", 5*time.Minute, "overall deadline")
	_ = v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))

	root.AddCommand(newEmpresasCmd(v), newBairrosCmd(v))
	return root
}

func newEmpresasCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "empresas",
		Short: "Upsert companies from a JSON export into MongoDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration("timeout"))
			defer cancel()
			return seedEmpresas(ctx, v)
		},
	}
	cmd.Flags().String("file", "empresas.json", "company export")
	cmd.Flags().String("mongodb-uri", globals.MongoURI, "MongoDB connection string")
	cmd.Flags().String("mongodb-db", globals.MongoDatabase, "MongoDB database")
	_ = v.BindPFlag("empresas_file", cmd.Flags().Lookup("file"))
	_ = v.BindPFlag("mongodb_uri", cmd.Flags().Lookup("mongodb-uri"))
	_ = v.BindPFlag("mongodb_db", cmd.Flags().Lookup("mongodb-db"))
	return cmd
}

func newBairrosCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bairros",
		Short: "Upsert neighbourhoods into Postgres with their collection sector",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration("timeout"))
			defer cancel()
			return seedBairros(ctx, v)
		},
	}
	cmd.Flags().String("bairros", "bairros.json", "neighbourhood export")
	cmd.Flags().String("coleta", "coleta.json", "collection schedule")
	cmd.Flags().String("database-url", "", "Postgres connection string")
	_ = v.BindPFlag("bairros_file", cmd.Flags().Lookup("bairros"))
	_ = v.BindPFlag("coleta_file", cmd.Flags().Lookup("coleta"))
	_ = v.BindPFlag("database_url", cmd.Flags().Lookup("database-url"))
	return cmd
}

func readJSON(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func seedEmpresas(ctx context.Context, v *viper.Viper) error {
	runID := uuid.NewString()
	globals.MongoURI = v.GetString("mongodb_uri")
	globals.MongoDatabase = v.GetString("mongodb_db")

	var export []companies.SeedCompany
	if err := readJSON(v.GetString("empresas_file"), &export); err != nil {
		return err
	}

	database, err := db.Database(ctx)
	if err != nil {
		return err
	}
	defer db.Disconnect(context.Background())

	im := &companies.Importer{
		Companies:  database.Collection(db.CompaniesCollection),
		Categories: database.Collection(db.CategoriesCollection),
	}

	log.Printf("🚀 [%s] importing %d empresas", runID, len(export))
	var inserted, updated, failed int
	for _, c := range export {
		created, err := im.Import(ctx, c)
		switch {
		case err != nil:
			failed++
			log.Printf("❌ %s: %v", c.Nome, err)
		case created:
			inserted++
			log.Printf("✅ %s", c.Nome)
		default:
			updated++
		}
	}

	log.Printf("📊 [%s] inseridas=%d atualizadas=%d erros=%d", runID, inserted, updated, failed)
	if failed > 0 {
		return fmt.Errorf("%d empresas falharam", failed)
	}
	return nil
}

func seedBairros(ctx context.Context, v *viper.Viper) error {
	dsn := v.GetString("database_url")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL não definido")
	}

	var seed bairros.SeedFile
	if err := readJSON(v.GetString("bairros_file"), &seed); err != nil {
		return err
	}
	var coleta bairros.ColetaFile
	if err := readJSON(v.GetString("coleta_file"), &coleta); err != nil {
		return err
	}

	idx, err := bairros.SectorIndex(coleta)
	if err != nil {
		return err
	}
	rows, unmatched := bairros.Prepare(seed, idx)

	pool, err := pg.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	start := time.Now()
	n, err := bairros.NewPGStore(pool).Upsert(ctx, rows)
	if err != nil {
		return err
	}

	log.Printf("📊 bairros=%d com setor=%d sem setor=%d em %s",
		n, len(rows)-len(unmatched), len(unmatched), time.Since(start).Truncate(time.Millisecond))
	for _, nome := range unmatched {
		log.Printf("⚠️  sem setor: %s", nome)
	}
	return nil
}
