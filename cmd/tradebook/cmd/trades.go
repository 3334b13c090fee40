package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tradebook/tradebook/api"
	"github.com/tradebook/tradebook/form"
	"github.com/tradebook/tradebook/tradelogic"
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "Record, update and review journal trades",
	Long: `Work with journal trades.

Subcommands:
  list        - List trades with optional filters
  get         - Show one trade in full
  create      - Record a new trade
  update      - Change fields of an existing trade
  delete      - Delete one trade
  duplicate   - Copy an existing trade
  bulk-delete - Delete several trades at once
  bulk-tag    - Add or remove tags across several trades
  export      - Download the filtered trades as CSV
  import      - Upload a CSV of trades
  compare     - Fetch several trades side by side

Examples:
  tradebook trades list --from 2026-01-01 --symbol 7
  tradebook trades create --symbol 7 --side long --entry 100 --exit 110 --qty 10 \
      --entry-date 2026-03-01T09:30 --exit-date 2026-03-01T15:45 --pnl 100`,
}

var tradesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades with optional filters",
	Args:  cobra.NoArgs,
	RunE:  runTradesList,
}

var tradesGetCmd = &cobra.Command{
	Use:   "get <trade-id>",
	Short: "Show one trade in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesGet,
}

var tradesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a new trade",
	Args:  cobra.NoArgs,
	RunE:  runTradesCreate,
}

var tradesUpdateCmd = &cobra.Command{
	Use:   "update <trade-id>",
	Short: "Change fields of an existing trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesUpdate,
}

var tradesDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete one trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesDelete,
}

var tradesDuplicateCmd = &cobra.Command{
	Use:   "duplicate <trade-id>",
	Short: "Copy an existing trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesDuplicate,
}

var tradesBulkDeleteCmd = &cobra.Command{
	Use:   "bulk-delete <trade-id>...",
	Short: "Delete several trades at once",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTradesBulkDelete,
}

var tradesBulkTagCmd = &cobra.Command{
	Use:   "bulk-tag <trade-id>...",
	Short: "Add or remove tags across several trades",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTradesBulkTag,
}

var tradesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the filtered trades as CSV",
	Args:  cobra.NoArgs,
	RunE:  runTradesExport,
}

var tradesImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Upload a CSV of trades",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesImport,
}

var tradesCompareCmd = &cobra.Command{
	Use:   "compare <trade-id>...",
	Short: "Fetch several trades side by side",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTradesCompare,
}

// List/export filters.
var (
	listPage     int
	listFrom     string
	listTo       string
	listSymbol   int
	listStrategy int
	listPaper    bool
	listReal     bool
	listSearch   string
	listOrdering string
)

// Create/update fields.
var (
	tradeSymbol       int
	tradeSide         string
	tradeEntry        float64
	tradeExit         float64
	tradeStop         float64
	tradeQty          float64
	tradeInvested     float64
	tradeRisked       float64
	tradeLeverage     float64
	tradeEntryDate    string
	tradeExitDate     string
	tradePnl          float64
	tradeCapital      float64
	tradeNotes        string
	tradeStrategy     int
	tradeTags         []int
	tradeEmotion      int
	tradeEmotionNotes string
	tradePlan         string
	tradeReview       string
	tradePaper        bool
	tradeScreenshot   string
)

var (
	bulkTagIDs    []int
	bulkTagRemove bool
	exportOutput  string
)

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&listPage, "page", 0, "result page (0 = first)")
	cmd.Flags().StringVar(&listFrom, "from", "", "earliest exit date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&listTo, "to", "", "latest exit date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&listSymbol, "symbol", 0, "filter by symbol id")
	cmd.Flags().IntVar(&listStrategy, "strategy", 0, "filter by strategy id")
	cmd.Flags().BoolVar(&listPaper, "paper", false, "only paper trades")
	cmd.Flags().BoolVar(&listReal, "real", false, "only real trades")
	cmd.Flags().StringVar(&listSearch, "search", "", "free-text search")
	cmd.Flags().StringVar(&listOrdering, "ordering", "", "sort field, prefix with - to reverse")
}

func addTradeFieldFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&tradeSymbol, "symbol", 0, "symbol id")
	cmd.Flags().StringVar(&tradeSide, "side", "", "long or short")
	cmd.Flags().Float64Var(&tradeEntry, "entry", 0, "entry price")
	cmd.Flags().Float64Var(&tradeExit, "exit", 0, "exit price")
	cmd.Flags().Float64Var(&tradeStop, "stop", 0, "stop loss price")
	cmd.Flags().Float64Var(&tradeQty, "qty", 0, "quantity")
	cmd.Flags().Float64Var(&tradeInvested, "invested", 0, "amount invested")
	cmd.Flags().Float64Var(&tradeRisked, "risked", 0, "amount risked")
	cmd.Flags().Float64Var(&tradeLeverage, "leverage", 0, "leverage multiplier")
	cmd.Flags().StringVar(&tradeEntryDate, "entry-date", "", "entry timestamp")
	cmd.Flags().StringVar(&tradeExitDate, "exit-date", "", "exit timestamp")
	cmd.Flags().Float64Var(&tradePnl, "pnl", 0, "realized profit or loss")
	cmd.Flags().Float64Var(&tradeCapital, "capital", 0, "total account capital")
	cmd.Flags().StringVar(&tradeNotes, "notes", "", "free-form notes")
	cmd.Flags().IntVar(&tradeStrategy, "strategy", 0, "strategy id")
	cmd.Flags().IntSliceVar(&tradeTags, "tag", nil, "tag id (repeatable)")
	cmd.Flags().IntVar(&tradeEmotion, "emotion", 0, "emotion rating 1-5")
	cmd.Flags().StringVar(&tradeEmotionNotes, "emotion-notes", "", "emotion notes")
	cmd.Flags().StringVar(&tradePlan, "plan", "", "pre-trade plan")
	cmd.Flags().StringVar(&tradeReview, "review", "", "post-trade review")
	cmd.Flags().BoolVar(&tradePaper, "paper", false, "mark as paper trade")
	cmd.Flags().StringVar(&tradeScreenshot, "screenshot", "", "path to a screenshot image")
}

func init() {
	rootCmd.AddCommand(tradesCmd)
	tradesCmd.AddCommand(tradesListCmd)
	tradesCmd.AddCommand(tradesGetCmd)
	tradesCmd.AddCommand(tradesCreateCmd)
	tradesCmd.AddCommand(tradesUpdateCmd)
	tradesCmd.AddCommand(tradesDeleteCmd)
	tradesCmd.AddCommand(tradesDuplicateCmd)
	tradesCmd.AddCommand(tradesBulkDeleteCmd)
	tradesCmd.AddCommand(tradesBulkTagCmd)
	tradesCmd.AddCommand(tradesExportCmd)
	tradesCmd.AddCommand(tradesImportCmd)
	tradesCmd.AddCommand(tradesCompareCmd)

	addListFlags(tradesListCmd)
	addListFlags(tradesExportCmd)
	tradesExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "trades.csv", "output file")

	addTradeFieldFlags(tradesCreateCmd)
	addTradeFieldFlags(tradesUpdateCmd)

	tradesBulkTagCmd.Flags().IntSliceVar(&bulkTagIDs, "tag", nil, "tag id (repeatable, required)")
	tradesBulkTagCmd.Flags().BoolVar(&bulkTagRemove, "remove", false, "remove the tags instead of adding")
	tradesBulkTagCmd.MarkFlagRequired("tag")
}

func listParams() api.TradesListParams {
	params := api.TradesListParams{
		From:     listFrom,
		To:       listTo,
		Search:   listSearch,
		Ordering: listOrdering,
	}
	if listPage > 0 {
		params.Page = &listPage
	}
	if listSymbol > 0 {
		params.Symbol = &listSymbol
	}
	if listStrategy > 0 {
		params.Strategy = &listStrategy
	}
	switch {
	case listPaper:
		yes := true
		params.IsPaper = &yes
	case listReal:
		no := false
		params.IsPaper = &no
	}
	return params
}

func runTradesList(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	page, err := client.ListTrades(cmd.Context(), listParams())
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	printTradeTable(page.Results)
	fmt.Printf("\n%d of %d trades\n", len(page.Results), page.Count)
	return nil
}

func runTradesGet(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("trade id: %w", err)
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}

	trade, err := client.GetTrade(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	printTradeDetail(trade)
	return nil
}

func runTradesCreate(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	f := form.TradeForm{
		Symbol:          tradeSymbol,
		Side:            tradelogic.Side(strings.ToLower(tradeSide)),
		EntryDate:       tradeEntryDate,
		ExitDate:        tradeExitDate,
		Notes:           tradeNotes,
		TagIDs:          tradeTags,
		EmotionNotes:    tradeEmotionNotes,
		PreTradePlan:    tradePlan,
		PostTradeReview: tradeReview,
		IsPaper:         tradePaper,
	}
	setIfChanged(cmd, "entry", &f.EntryPrice, tradeEntry)
	setIfChanged(cmd, "exit", &f.ExitPrice, tradeExit)
	setIfChanged(cmd, "stop", &f.StopLoss, tradeStop)
	setIfChanged(cmd, "qty", &f.Quantity, tradeQty)
	setIfChanged(cmd, "invested", &f.AmountInvested, tradeInvested)
	setIfChanged(cmd, "risked", &f.AmountRisked, tradeRisked)
	setIfChanged(cmd, "leverage", &f.Leverage, tradeLeverage)
	setIfChanged(cmd, "pnl", &f.Pnl, tradePnl)
	setIfChanged(cmd, "capital", &f.TotalCapital, tradeCapital)
	if cmd.Flags().Changed("strategy") {
		f.Strategy = &tradeStrategy
	}
	if cmd.Flags().Changed("emotion") {
		f.EmotionRating = &tradeEmotion
	}

	// Validation drops tag ids the server no longer knows about, so the
	// known set has to come from the server first.
	var known []api.Tag
	if len(f.TagIDs) > 0 {
		known, err = client.ListTags(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch tags: %w", err)
		}
	}

	in, errs := f.Validate(known)
	if len(errs) > 0 {
		return formError(errs)
	}

	screenshot, err := loadAttachment(tradeScreenshot)
	if err != nil {
		return err
	}

	trade, err := client.CreateTrade(cmd.Context(), in, screenshot)
	if err != nil {
		return fmt.Errorf("create trade: %w", err)
	}

	fmt.Printf("✓ Created trade %d (%s %s, pnl %s)\n", trade.ID, trade.Side, trade.SymbolName, trade.Pnl)
	return nil
}

func runTradesUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("trade id: %w", err)
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}

	var up api.TradeUpdate
	if cmd.Flags().Changed("symbol") {
		up.Symbol = &tradeSymbol
	}
	if cmd.Flags().Changed("side") {
		side := tradelogic.Side(strings.ToLower(tradeSide))
		up.Side = &side
	}
	setIfChanged(cmd, "entry", &up.EntryPrice, tradeEntry)
	setIfChanged(cmd, "exit", &up.ExitPrice, tradeExit)
	setIfChanged(cmd, "stop", &up.StopLoss, tradeStop)
	setIfChanged(cmd, "qty", &up.Quantity, tradeQty)
	setIfChanged(cmd, "risked", &up.AmountRisked, tradeRisked)
	setIfChanged(cmd, "leverage", &up.Leverage, tradeLeverage)
	setIfChanged(cmd, "pnl", &up.Pnl, tradePnl)
	setIfChanged(cmd, "capital", &up.TotalCapital, tradeCapital)
	if cmd.Flags().Changed("emotion") {
		rating := float64(tradeEmotion)
		up.EmotionRating = &rating
	}
	if cmd.Flags().Changed("entry-date") {
		up.EntryDate = &tradeEntryDate
	}
	if cmd.Flags().Changed("exit-date") {
		up.ExitDate = &tradeExitDate
	}
	if cmd.Flags().Changed("notes") {
		up.Notes = &tradeNotes
	}
	if cmd.Flags().Changed("strategy") {
		up.Strategy = &tradeStrategy
	}
	if cmd.Flags().Changed("tag") {
		up.TagIDs = tradeTags
	}
	if cmd.Flags().Changed("emotion-notes") {
		up.EmotionNotes = &tradeEmotionNotes
	}
	if cmd.Flags().Changed("plan") {
		up.PreTradePlan = &tradePlan
	}
	if cmd.Flags().Changed("review") {
		up.PostTradeReview = &tradeReview
	}
	if cmd.Flags().Changed("paper") {
		up.IsPaper = &tradePaper
	}

	screenshot, err := loadAttachment(tradeScreenshot)
	if err != nil {
		return err
	}

	trade, err := client.UpdateTrade(cmd.Context(), id, up, screenshot)
	if err != nil {
		return fmt.Errorf("update trade: %w", err)
	}

	fmt.Printf("✓ Updated trade %d\n", trade.ID)
	return nil
}

func runTradesDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("trade id: %w", err)
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}
	if err := client.DeleteTrade(cmd.Context(), id); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	fmt.Printf("✓ Deleted trade %d\n", id)
	return nil
}

func runTradesDuplicate(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("trade id: %w", err)
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}
	trade, err := client.DuplicateTrade(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("duplicate trade: %w", err)
	}
	fmt.Printf("✓ Duplicated trade %d as %d\n", id, trade.ID)
	return nil
}

func runTradesBulkDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}
	deleted, err := client.BulkDeleteTrades(cmd.Context(), ids)
	if err != nil {
		return fmt.Errorf("bulk delete: %w", err)
	}
	fmt.Printf("✓ Deleted %d trades\n", deleted)
	return nil
}

func runTradesBulkTag(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}

	action := api.TagAdd
	if bulkTagRemove {
		action = api.TagRemove
	}
	updated, err := client.BulkTagTrades(cmd.Context(), ids, bulkTagIDs, action)
	if err != nil {
		return fmt.Errorf("bulk tag: %w", err)
	}
	fmt.Printf("✓ Updated tags on %d trades\n", updated)
	return nil
}

func runTradesExport(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	data, err := client.ExportTradesCSV(cmd.Context(), listParams())
	if err != nil {
		return fmt.Errorf("export trades: %w", err)
	}
	if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	fmt.Printf("✓ Exported trades to %s (%d bytes)\n", exportOutput, len(data))
	return nil
}

func runTradesImport(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}

	result, err := client.ImportTradesCSV(cmd.Context(), filepath.Base(args[0]), content)
	if err != nil {
		return fmt.Errorf("import trades: %w", err)
	}

	fmt.Printf("✓ Imported %d trades", result.Created)
	if result.TotalErrors > 0 {
		fmt.Printf(" (%d rows failed)", result.TotalErrors)
	}
	fmt.Println()
	for _, msg := range result.Errors {
		fmt.Printf("  - %s\n", msg)
	}
	return nil
}

func runTradesCompare(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}

	trades, err := client.CompareTrades(cmd.Context(), ids)
	if err != nil {
		return fmt.Errorf("compare trades: %w", err)
	}
	printTradeTable(trades)
	return nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("trade id %q: %w", a, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// setIfChanged points dst at value only when the flag was given on the
// command line, so unset optionals stay nil.
func setIfChanged(cmd *cobra.Command, flag string, dst **float64, value float64) {
	if cmd.Flags().Changed(flag) {
		v := value
		*dst = &v
	}
}

func loadAttachment(path string) (*api.Attachment, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read screenshot: %w", err)
	}
	return &api.Attachment{Filename: filepath.Base(path), Content: content}, nil
}

func formError(errs form.Errors) error {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("invalid trade:")
	for _, field := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", field, errs[field])
	}
	return fmt.Errorf("%s", b.String())
}

func deref(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}

func printTradeTable(trades []api.Trade) {
	fmt.Printf("%-6s %-10s %-6s %10s %10s %10s %6s  %s\n",
		"ID", "SYMBOL", "SIDE", "ENTRY", "EXIT", "PNL", "RR", "EXIT DATE")
	for _, t := range trades {
		fmt.Printf("%-6d %-10s %-6s %10s %10s %10s %6s  %s\n",
			t.ID, t.SymbolName, t.Side, t.EntryPrice, t.ExitPrice, t.Pnl, deref(t.Rr), t.ExitDate)
	}
}

func printTradeDetail(t api.Trade) {
	fmt.Printf("Trade %d: %s %s\n", t.ID, t.Side, t.SymbolName)
	fmt.Printf("  Entry:    %s @ %s\n", t.EntryPrice, t.EntryDate)
	fmt.Printf("  Exit:     %s @ %s\n", t.ExitPrice, t.ExitDate)
	fmt.Printf("  Stop:     %s\n", deref(t.StopLoss))
	fmt.Printf("  Quantity: %s\n", deref(t.Quantity))
	fmt.Printf("  P&L:      %s  (rr %s)\n", t.Pnl, deref(t.Rr))
	fmt.Printf("  Strategy: %s\n", deref(t.StrategyName))
	if len(t.Tags) > 0 {
		names := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			names[i] = tag.Name
		}
		fmt.Printf("  Tags:     %s\n", strings.Join(names, ", "))
	}
	if t.IsPaper {
		fmt.Println("  Paper trade")
	}
	if t.Notes != "" {
		fmt.Printf("  Notes:    %s\n", t.Notes)
	}
	if t.PreTradePlan != "" {
		fmt.Printf("  Plan:     %s\n", t.PreTradePlan)
	}
	if t.PostTradeReview != "" {
		fmt.Printf("  Review:   %s\n", t.PostTradeReview)
	}
}
